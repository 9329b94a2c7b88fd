package article

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
	artUC "newsdesk/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事詳細取得
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	art, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(art))
}
