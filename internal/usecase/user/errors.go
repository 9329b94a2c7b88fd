// Package user provides use cases for the user database: registration,
// lookup and credential checks.
package user

import (
	"fmt"

	"newsdesk/internal/domain/entity"
)

// Sentinel errors for user use case operations.
var (
	// ErrUserNotFound indicates that no user has the requested username.
	ErrUserNotFound = fmt.Errorf("user %w", entity.ErrNotFound)

	// ErrUserExists indicates that the username is already registered.
	ErrUserExists = fmt.Errorf("user %w", entity.ErrAlreadyExists)
)
