package refreshtokens

import (
	"context"
	"time"

	"github.com/mweller/jotter/internal/server/models"
)

// Repository persists server-stored refresh tokens.
type Repository interface {
	Create(ctx context.Context, userID, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
