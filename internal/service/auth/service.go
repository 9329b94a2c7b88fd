// Package auth implements login, session tokens and the role hierarchy check.
// It is framework-agnostic and can be used from HTTP handlers or a CLI.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/usecase/user"
)

// UserLookup finds users by username.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Identity is what a token proves about its bearer.
type Identity struct {
	Username string
	Role     entity.Role
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, id Identity) (token string, expiresAt time.Time, err error)
	Resolve(ctx context.Context, token string) (Identity, error)
	Revoke(ctx context.Context, token string) error
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// Service handles authentication business logic.
type Service struct {
	Users  UserLookup
	Tokens TokenIssuer
}

// Login checks the password against the stored hash and issues a token.
// Any failure to match yields ErrAuthFailure.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			// 存在しないユーザーでもハッシュ比較の時間を払う
			user.CheckPassword(nil, password)
			return nil, ErrAuthFailure
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !user.CheckPassword(u, password) {
		return nil, ErrAuthFailure
	}

	token, exp, err := s.Tokens.Issue(ctx, Identity{Username: u.Username, Role: u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Logout revokes token. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.Tokens.Revoke(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to the current user record,
// so role changes and removed accounts take effect before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	id, err := s.Tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.GetByUsername(ctx, id.Username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			slog.WarnContext(ctx, "token for unknown user", slog.String("username", id.Username))
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// HasAccess reports whether u holds required or a higher role.
// administrator > editor > reader. A nil user has no access.
func HasAccess(u *entity.User, required entity.Role) bool {
	if u == nil || !required.Valid() {
		return false
	}
	return u.Role.Rank() >= required.Rank()
}
