package comment

import (
	"errors"
	"net/http"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/metrics"
	authSvc "newsdesk/internal/service/auth"
	cmtUC "newsdesk/internal/usecase/comment"
)

// Register registers the comment routes, including the per-article listing.
func Register(mux *http.ServeMux, svc *cmtUC.Service, guard auth.Guard) {
	mux.Handle("GET    /comments/{id}", guard.Reader(GetHandler{svc}))
	mux.Handle("GET    /articles/{id}/comments", guard.Reader(ByArticleHandler{svc}))
	mux.Handle("POST   /comments", guard.Reader(CreateHandler{svc}))
	mux.Handle("PUT    /comments/{id}", guard.Reader(UpdateHandler{svc}))
	mux.Handle("DELETE /comments/{id}", guard.Reader(DeleteHandler{svc}))
}

// mayChange reports whether u may edit or delete c.
func mayChange(u *entity.User, c *entity.Comment) bool {
	return u.Username == c.Author || authSvc.HasAccess(u, entity.RoleEditor)
}

type GetHandler struct{ Svc *cmtUC.Service }

// ServeHTTP コメント取得
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type ByArticleHandler struct{ Svc *cmtUC.Service }

// ServeHTTP 記事ごとのコメント一覧
func (h ByArticleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.ListByArticle(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(cs))
}

type CreateHandler struct{ Svc *cmtUC.Service }

// ServeHTTP コメント投稿（投稿者は認証ユーザー）
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	var req CreateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}

	c, err := h.Svc.Create(r.Context(), cmtUC.CreateInput{
		ArticleID: req.ArticleID,
		Content:   req.Content,
		Author:    u.Username,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}
	metrics.RecordCommentCreated()

	w.Header().Set("Location", "/comments/"+c.ID)
	respond.JSON(w, http.StatusCreated, toDTO(c))
}

type UpdateHandler struct{ Svc *cmtUC.Service }

// ServeHTTP コメント編集
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	var req UpdateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}

	id := r.PathValue("id")
	existing, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	if !mayChange(u, existing) {
		respond.FromError(w, respond.ErrForbidden)
		return
	}

	c, err := h.Svc.Edit(r.Context(), id, req.Content)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type DeleteHandler struct{ Svc *cmtUC.Service }

// ServeHTTP コメント削除（存在しなくても 204）
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	id := r.PathValue("id")

	existing, err := h.Svc.Get(r.Context(), id)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		respond.FromError(w, err)
		return
	case !mayChange(u, existing):
		respond.FromError(w, respond.ErrForbidden)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
