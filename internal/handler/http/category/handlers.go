// Package category provides HTTP handlers for article categories.
package category

import (
	"net/http"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/handler/http/respond"
	catUC "newsdesk/internal/usecase/category"
)

// DTO represents the JSON structure for category data transfer.
type DTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request is the body of POST /categories and PUT /categories/{id}.
type Request struct {
	Name string `json:"name"`
}

func toDTO(c *entity.Category) DTO { return DTO{ID: c.ID, Name: c.Name} }

// Register registers the category routes. Reading needs a reader, changes need an editor.
func Register(mux *http.ServeMux, svc *catUC.Service, guard auth.Guard) {
	mux.Handle("GET    /categories", guard.Reader(ListHandler{svc}))
	mux.Handle("GET    /categories/{id}", guard.Reader(GetHandler{svc}))
	mux.Handle("POST   /categories", guard.Editor(CreateHandler{svc}))
	mux.Handle("PUT    /categories/{id}", guard.Editor(UpdateHandler{svc}))
	mux.Handle("DELETE /categories/{id}", guard.Editor(DeleteHandler{svc}))
}

type ListHandler struct{ Svc *catUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.FromError(w, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, c := range list {
		out = append(out, toDTO(c))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *catUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type CreateHandler struct{ Svc *catUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	c, err := h.Svc.Create(r.Context(), req.Name)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	w.Header().Set("Location", "/categories/"+c.ID)
	respond.JSON(w, http.StatusCreated, toDTO(c))
}

type UpdateHandler struct{ Svc *catUC.Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	c, err := h.Svc.Edit(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

type DeleteHandler struct{ Svc *catUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		respond.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
