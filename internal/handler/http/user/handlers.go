// Package user provides HTTP handlers for account management.
package user

import (
	"net/http"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/handler/http/respond"
	authSvc "newsdesk/internal/service/auth"
	userUC "newsdesk/internal/usecase/user"
)

// DTO is the public view of a user. The password hash is never exposed.
type DTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

func toDTO(u *entity.User) DTO {
	return DTO{Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

// Register registers the user routes. Account creation, listing and role
// changes are reserved to administrators.
func Register(mux *http.ServeMux, svc *userUC.Service, guard auth.Guard) {
	mux.Handle("POST /users", guard.Admin(RegisterHandler{svc}))
	mux.Handle("GET  /users", guard.Admin(ListHandler{svc}))
	mux.Handle("GET  /users/{username}", guard.Admin(GetHandler{svc}))
	mux.Handle("GET  /users/me", guard.Reader(MeHandler{}))
	mux.Handle("PUT  /users/me/email", guard.Reader(EmailHandler{svc}))
	mux.Handle("PUT  /users/me/password", guard.Reader(PasswordHandler{svc}))
	mux.Handle("PUT  /users/{username}/role", guard.Admin(RoleHandler{svc}))
}

type RegisterHandler struct{ Svc *userUC.Service }

// ServeHTTP ユーザー登録
func (h RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = string(entity.RoleReader)
	}
	u, err := h.Svc.Register(r.Context(), userUC.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}
	w.Header().Set("Location", "/users/"+u.Username)
	respond.JSON(w, http.StatusCreated, toDTO(u))
}

type ListHandler struct{ Svc *userUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context())
	if err != nil {
		respond.FromError(w, err)
		return
	}
	out := make([]DTO, 0, len(users))
	for _, u := range users {
		out = append(out, toDTO(u))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *userUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(u))
}

type MeHandler struct{}

func (MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	respond.JSON(w, http.StatusOK, toDTO(u))
}

type EmailHandler struct{ Svc *userUC.Service }

func (h EmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.UserFrom(r.Context())
	var req EmailRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	u, err := h.Svc.UpdateEmail(r.Context(), me.Username, req.Email)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(u))
}

type PasswordHandler struct{ Svc *userUC.Service }

// ServeHTTP パスワード変更（現在のパスワードが必要）
func (h PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.UserFrom(r.Context())
	var req PasswordRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	if !userUC.CheckPassword(me, req.CurrentPassword) {
		respond.FromError(w, authSvc.ErrAuthFailure)
		return
	}
	if _, err := h.Svc.UpdatePassword(r.Context(), me.Username, req.NewPassword); err != nil {
		respond.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type RoleHandler struct{ Svc *userUC.Service }

func (h RoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	u, err := h.Svc.UpdateRole(r.Context(), r.PathValue("username"), req.Role)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(u))
}
