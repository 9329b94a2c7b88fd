package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/metrics"
	authSvc "newsdesk/internal/service/auth"
)

// Sessions is the login/logout side of the auth service.
type Sessions interface {
	Login(ctx context.Context, username, password string) (*authSvc.Session, error)
	Logout(ctx context.Context, token string) error
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

type LoginHandler struct{ Svc Sessions }

// ServeHTTP ログイン
func (h LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.FromError(w, err)
		return
	}
	for _, f := range []struct{ name, value string }{
		{"username", req.Username},
		{"password", req.Password},
	} {
		if err := entity.Required(f.name, f.value); err != nil {
			respond.FromError(w, err)
			return
		}
	}

	sess, err := h.Svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authSvc.ErrAuthFailure) {
			metrics.RecordLogin(false)
			slog.InfoContext(r.Context(), "login failed", slog.String("username", req.Username))
		}
		respond.FromError(w, err)
		return
	}
	metrics.RecordLogin(true)

	respond.JSON(w, http.StatusOK, LoginResponse{
		Token:     sess.Token,
		TokenType: "Bearer",
		ExpiresAt: sess.ExpiresAt.UTC(),
		Username:  sess.User.Username,
		Role:      string(sess.User.Role),
	})
}

type LogoutHandler struct{ Svc Sessions }

// ServeHTTP ログアウト（トークン失効）
func (h LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, err := BearerToken(r)
	if err != nil {
		respond.SafeError(w, http.StatusUnauthorized, err)
		return
	}
	if err := h.Svc.Logout(r.Context(), token); err != nil {
		respond.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
