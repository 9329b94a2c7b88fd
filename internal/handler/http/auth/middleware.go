// Package auth provides the HTTP side of authentication: bearer token
// middleware, role guards and the login/logout endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/metrics"
	authSvc "newsdesk/internal/service/auth"
)

type ctxKey string

const ctxUser ctxKey = "user"

var errMissingToken = fmt.Errorf("missing bearer token: %w", authSvc.ErrInvalidToken)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFrom returns the authenticated user stored by Authenticate.
func UserFrom(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(ctxUser).(*entity.User)
	return u, ok && u != nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", errMissingToken
	}
	token := strings.TrimSpace(h[len(prefix):])
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="newsdesk"`)
				respond.SafeError(w, http.StatusUnauthorized, err)
				return
			}
			u, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, authSvc.ErrInvalidToken) {
					respond.FromError(w, err)
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="newsdesk", error="invalid_token"`)
				respond.SafeError(w, http.StatusUnauthorized, authSvc.ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireRole answers 403 unless the authenticated user holds role or a higher one.
// It must run inside Authenticate.
func RequireRole(role entity.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok {
			respond.SafeError(w, http.StatusUnauthorized, errMissingToken)
			return
		}
		if !authSvc.HasAccess(u, role) {
			metrics.RecordAccessDenied(string(role))
			slog.WarnContext(r.Context(), "access denied",
				slog.String("username", u.Username),
				slog.String("role", string(u.Role)),
				slog.String("required_role", string(role)),
				slog.String("path", r.URL.Path))
			respond.FromError(w, respond.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Guard combines Authenticate and RequireRole for route registration.
type Guard struct {
	Auth Authenticator
}

// Require protects h so that only users with role (or higher) reach it.
func (g Guard) Require(role entity.Role, h http.Handler) http.Handler {
	return Authenticate(g.Auth)(RequireRole(role, h))
}

// Reader is shorthand for Require(entity.RoleReader, h).
func (g Guard) Reader(h http.Handler) http.Handler { return g.Require(entity.RoleReader, h) }

// Editor is shorthand for Require(entity.RoleEditor, h).
func (g Guard) Editor(h http.Handler) http.Handler { return g.Require(entity.RoleEditor, h) }

// Admin is shorthand for Require(entity.RoleAdministrator, h).
func (g Guard) Admin(h http.Handler) http.Handler { return g.Require(entity.RoleAdministrator, h) }
