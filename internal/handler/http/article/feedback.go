package article

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/metrics"
	artUC "newsdesk/internal/usecase/article"
)

// RatingRequest is the body of POST /articles/{id}/ratings.
type RatingRequest struct {
	Value float64 `json:"value"`
}

// RatingDTO summarizes an article's ratings.
type RatingDTO struct {
	ArticleID     string  `json:"article_id"`
	AverageRating float64 `json:"average_rating"`
	Count         int     `json:"count"`
}

// ReviewRequest is the body of POST /articles/{id}/reviews.
type ReviewRequest struct {
	Text string `json:"text"`
}

// ReviewsDTO lists an article's reviews.
type ReviewsDTO struct {
	ArticleID string   `json:"article_id"`
	Reviews   []string `json:"reviews"`
}

type AddRatingHandler struct{ Svc *artUC.Service }

// ServeHTTP 評価を追加
func (h AddRatingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	art, err := h.Svc.AddRating(r.Context(), r.PathValue("id"), req.Value)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	metrics.RecordRating(req.Value)

	respond.JSON(w, http.StatusCreated, RatingDTO{
		ArticleID:     art.ID,
		AverageRating: art.AverageRating(),
		Count:         len(art.Ratings),
	})
}

type RatingHandler struct{ Svc *artUC.Service }

// ServeHTTP 平均評価を取得
func (h RatingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	art, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, RatingDTO{
		ArticleID:     art.ID,
		AverageRating: art.AverageRating(),
		Count:         len(art.Ratings),
	})
}

type AddReviewHandler struct{ Svc *artUC.Service }

// ServeHTTP レビューを追加
func (h AddReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	art, err := h.Svc.AddReview(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	metrics.RecordReview()

	respond.JSON(w, http.StatusCreated, ReviewsDTO{ArticleID: art.ID, Reviews: art.ListReviews()})
}

type ReviewsHandler struct{ Svc *artUC.Service }

// ServeHTTP レビュー一覧
func (h ReviewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	reviews, err := h.Svc.Reviews(r.Context(), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	if reviews == nil {
		reviews = []string{}
	}
	respond.JSON(w, http.StatusOK, ReviewsDTO{ArticleID: id, Reviews: reviews})
}
