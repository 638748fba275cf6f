package insights

import (
	"context"

	"github.com/mweller/jotter/internal/server/models"
)

// Repository persists per-entry AI annotations. An insight row does not exist
// until the first successful summarization; the service decides between
// Insert and UpdateSummary based on presence.
type Repository interface {
	GetByEntryID(ctx context.Context, userID, entryID string) (*models.Insight, error)
	Insert(ctx context.Context, insight *models.Insight) (*models.Insight, error)
	UpdateSummary(ctx context.Context, userID, entryID, summary string) error
}
