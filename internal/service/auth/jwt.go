package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"newsdesk/internal/common/clock"
	"newsdesk/internal/domain/entity"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer issues HS256-signed tokens carrying the username (sub) and role.
// Revoked token IDs are remembered until the token would have expired anyway.
type JWTIssuer struct {
	Secret []byte
	TTL    time.Duration
	Clock  clock.Clock

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewJWTIssuer creates an issuer signing with secret.
func NewJWTIssuer(secret []byte, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{Secret: secret, TTL: ttl, Clock: clock.System{}, revoked: make(map[string]time.Time)}
}

func (j *JWTIssuer) Issue(_ context.Context, id Identity) (string, time.Time, error) {
	now := j.Clock.Now()
	exp := now.Add(j.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (j *JWTIssuer) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.Clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (j *JWTIssuer) Resolve(_ context.Context, token string) (Identity, error) {
	c, err := j.parse(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	j.mu.Lock()
	_, revoked := j.revoked[c.ID]
	j.mu.Unlock()
	if revoked {
		return Identity{}, ErrInvalidToken
	}

	role, err := entity.ParseRole(c.Role)
	if err != nil || c.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{Username: c.Subject, Role: role}, nil
}

// Revoke blacklists the token's ID. Tokens that fail verification are ignored.
func (j *JWTIssuer) Revoke(_ context.Context, token string) error {
	c, err := j.parse(token)
	if err != nil {
		return nil
	}

	j.mu.Lock()
	j.revoked[c.ID] = c.ExpiresAt.Time
	j.mu.Unlock()
	return nil
}

// Purge forgets revocations whose tokens have expired.
func (j *JWTIssuer) Purge() int {
	now := j.Clock.Now()

	j.mu.Lock()
	defer j.mu.Unlock()

	n := 0
	for id, exp := range j.revoked {
		if !now.Before(exp) {
			delete(j.revoked, id)
			n++
		}
	}
	return n
}
