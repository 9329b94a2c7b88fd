package auth

import "errors"

var (
	// ErrAuthFailure is returned for an unknown username or a wrong password.
	// The two cases are deliberately indistinguishable to callers.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrInvalidToken is returned for unknown, expired or revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)
