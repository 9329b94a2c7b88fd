// Package feed exposes the caller's feed preferences and matching articles.
// The feed user ID is the authenticated username.
package feed

import (
	"net/http"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/handler/http/respond"
	feedUC "newsdesk/internal/usecase/feed"
)

// Preferences is the JSON form of entity.FeedPreferences.
// An article matches only if its category, author and country are all listed.
type Preferences struct {
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
	Countries  []string `json:"countries"`
}

// ArticleDTO is the feed view of an article.
type ArticleDTO struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Category      string  `json:"category"`
	Country       string  `json:"country"`
	CreateDate    string  `json:"create_date"`
	AverageRating float64 `json:"average_rating"`
}

func (p Preferences) toEntity() entity.FeedPreferences {
	return entity.FeedPreferences{
		FavoriteCategory: entity.NewStringSet(p.Categories...),
		FavoriteAuthor:   entity.NewStringSet(p.Authors...),
		FavoriteCountry:  entity.NewStringSet(p.Countries...),
	}
}

func fromEntity(p entity.FeedPreferences) Preferences {
	return Preferences{
		Categories: values(p.FavoriteCategory),
		Authors:    values(p.FavoriteAuthor),
		Countries:  values(p.FavoriteCountry),
	}
}

func values(s entity.StringSet) []string {
	if len(s) == 0 {
		return []string{}
	}
	return s.Values()
}

// Register registers the feed routes for authenticated readers.
func Register(mux *http.ServeMux, engine *feedUC.Engine, guard auth.Guard) {
	mux.Handle("GET    /feed", guard.Reader(FeedHandler{engine}))
	mux.Handle("GET    /feed/preferences", guard.Reader(GetPreferencesHandler{engine}))
	mux.Handle("PUT    /feed/preferences", guard.Reader(PutPreferencesHandler{engine}))
	mux.Handle("DELETE /feed/preferences", guard.Reader(DeletePreferencesHandler{engine}))
}

type FeedHandler struct{ Engine *feedUC.Engine }

// ServeHTTP 自分のフィード（好みに一致する記事）
func (h FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	articles, err := h.Engine.FeedFor(r.Context(), u.Username)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	out := make([]ArticleDTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, ArticleDTO{
			ID:            a.ID,
			Title:         a.Title,
			Author:        a.Author,
			Category:      a.Category,
			Country:       a.Country,
			CreateDate:    a.CreateDate,
			AverageRating: a.AverageRating(),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetPreferencesHandler struct{ Engine *feedUC.Engine }

func (h GetPreferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	prefs, err := h.Engine.Preferences(r.Context(), u.Username)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(prefs))
}

type PutPreferencesHandler struct{ Engine *feedUC.Engine }

// ServeHTTP 好みを登録（上書き）
func (h PutPreferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	var req Preferences
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	prefs := req.toEntity()
	if err := h.Engine.RegisterUser(r.Context(), u.Username, prefs); err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(prefs))
}

type DeletePreferencesHandler struct{ Engine *feedUC.Engine }

func (h DeletePreferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	if err := h.Engine.Unregister(r.Context(), u.Username); err != nil {
		respond.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
