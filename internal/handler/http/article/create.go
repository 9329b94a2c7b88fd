package article

import (
	"net/http"

	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/metrics"
	artUC "newsdesk/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事作成
// Author defaults to the caller's username when omitted.
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	if req.Author == "" {
		if u, ok := auth.UserFrom(r.Context()); ok {
			req.Author = u.Username
		}
	}

	art, err := h.Svc.Create(r.Context(), req.input())
	if err != nil {
		respond.FromError(w, err)
		return
	}
	metrics.RecordArticleCreated(art.Category)

	w.Header().Set("Location", "/articles/"+art.ID)
	respond.JSON(w, http.StatusCreated, toDTO(art))
}
