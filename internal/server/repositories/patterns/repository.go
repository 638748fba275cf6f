package patterns

import (
	"context"

	"github.com/mweller/jotter/internal/server/models"
)

// Repository serves stored cross-entry patterns. Generation happens offline,
// so the server surface is read-only.
type Repository interface {
	List(ctx context.Context, userID string) ([]*models.Pattern, error)
}
