package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"newsdesk/internal/common/clock"
)

// tokenBytes is the amount of randomness in an opaque session token.
const tokenBytes = 16

// SessionStore issues opaque random tokens and remembers them until they expire.
type SessionStore struct {
	TTL   time.Duration
	Clock clock.Clock

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	id  Identity
	exp time.Time
}

// NewSessionStore creates a store whose tokens live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{TTL: ttl, Clock: clock.System{}, sessions: make(map[string]sessionEntry)}
}

func newOpaqueToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *SessionStore) Issue(_ context.Context, id Identity) (string, time.Time, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := s.Clock.Now().Add(s.TTL)

	s.mu.Lock()
	s.sessions[token] = sessionEntry{id: id, exp: exp}
	s.mu.Unlock()
	return token, exp, nil
}

func (s *SessionStore) Resolve(_ context.Context, token string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if !s.Clock.Now().Before(e.exp) {
		delete(s.sessions, token)
		return Identity{}, ErrInvalidToken
	}
	return e.id, nil
}

func (s *SessionStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Purge drops expired sessions and returns how many were removed.
func (s *SessionStore) Purge() int {
	now := s.Clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, e := range s.sessions {
		if !now.Before(e.exp) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}
