package article

import (
	"net/http"

	"newsdesk/internal/handler/http/auth"
	artUC "newsdesk/internal/usecase/article"
)

// Register registers all article-related HTTP handlers with the given mux.
// Every route requires an authenticated reader; content changes require an editor.
func Register(mux *http.ServeMux, svc *artUC.Service, guard auth.Guard) {
	mux.Handle("GET    /articles", guard.Reader(ListHandler{svc}))
	mux.Handle("GET    /articles/search", guard.Reader(SearchHandler{svc}))
	mux.Handle("GET    /articles/{id}", guard.Reader(GetHandler{svc}))
	mux.Handle("GET    /articles/{id}/rating", guard.Reader(RatingHandler{svc}))
	mux.Handle("GET    /articles/{id}/reviews", guard.Reader(ReviewsHandler{svc}))

	mux.Handle("POST   /articles/{id}/ratings", guard.Reader(AddRatingHandler{svc}))
	mux.Handle("POST   /articles/{id}/reviews", guard.Reader(AddReviewHandler{svc}))

	mux.Handle("POST   /articles", guard.Editor(CreateHandler{svc}))
	mux.Handle("POST   /articles/sort", guard.Editor(SortHandler{svc}))
	mux.Handle("PUT    /articles/{id}", guard.Editor(UpdateHandler{svc}))
	mux.Handle("DELETE /articles/{id}", guard.Editor(DeleteHandler{svc}))
}
