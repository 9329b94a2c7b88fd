// Package article provides use cases for managing article entities.
// It implements business logic for creating, editing, deleting, and querying articles,
// ordering them by date, and collecting reader ratings and reviews.
package article

import (
	"fmt"

	"newsdesk/internal/domain/entity"
)

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	// It matches entity.ErrNotFound under errors.Is.
	ErrArticleNotFound = fmt.Errorf("article %w", entity.ErrNotFound)

	// ErrInvalidArticleID indicates that the provided article ID is blank.
	ErrInvalidArticleID = &entity.ValidationError{Field: "id", Message: "is required"}

	// ErrInvalidOrder indicates an unknown sort direction.
	ErrInvalidOrder = fmt.Errorf("sort order %w", entity.ErrInvalidInput)
)
