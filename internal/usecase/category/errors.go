// Package category provides use cases for managing article categories.
package category

import (
	"fmt"

	"newsdesk/internal/domain/entity"
)

// ErrCategoryNotFound indicates that the requested category was not found.
var ErrCategoryNotFound = fmt.Errorf("category %w", entity.ErrNotFound)
