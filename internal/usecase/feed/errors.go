// Package feed matches articles against per-user preferences and
// dispatches notifications to every interested user.
package feed

import (
	"fmt"

	"newsdesk/internal/domain/entity"
)

// ErrUnknownUser is returned for a user who never registered preferences.
var ErrUnknownUser = fmt.Errorf("feed user %w", entity.ErrNotFound)
