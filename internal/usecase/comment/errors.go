// Package comment provides use cases for reader comments on articles.
package comment

import (
	"fmt"

	"newsdesk/internal/domain/entity"
)

// Sentinel errors for comment use case operations.
var (
	// ErrCommentNotFound indicates that the requested comment was not found.
	ErrCommentNotFound = fmt.Errorf("comment %w", entity.ErrNotFound)

	// ErrArticleNotFound is returned when commenting on an article that does not exist.
	ErrArticleNotFound = fmt.Errorf("article %w", entity.ErrNotFound)
)
