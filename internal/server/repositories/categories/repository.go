package categories

import (
	"context"

	"github.com/mweller/jotter/internal/server/models"
)

// Repository persists user-defined entry categories.
type Repository interface {
	List(ctx context.Context, userID string) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
}
