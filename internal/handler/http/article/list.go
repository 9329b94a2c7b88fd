package article

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
	artUC "newsdesk/internal/usecase/article"
)

type ListHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事一覧（保存順）
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(list))
}

type SearchHandler struct{ Svc *artUC.Service }

// ServeHTTP キーワード検索（タイトル・本文、大文字小文字を区別しない）
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(list))
}

type SortHandler struct{ Svc *artUC.Service }

// ServeHTTP 日付順に並べ替えて保存する
func (h SortHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	order, err := artUC.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	list, err := h.Svc.SortByDate(r.Context(), order)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(list))
}
