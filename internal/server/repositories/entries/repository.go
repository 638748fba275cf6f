package entries

import (
	"context"

	"github.com/mweller/jotter/internal/server/models"
)

// Repository is the persistence contract for journal entries. Every method is
// scoped to an owner: a row matched by id but belonging to another user is
// reported as not found.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)
	List(ctx context.Context, userID string, limit, offset int, entryType string) ([]*models.Entry, error)
	// UpdateText replaces raw text and transcript. When expectedRevision is
	// non-nil the update only applies if the stored revision matches,
	// returning common.ErrRevisionConflict otherwise; when nil the write is
	// last-write-wins.
	UpdateText(ctx context.Context, userID, id, rawText, transcript string, expectedRevision *int64) (*models.Entry, error)
	UpdateAudio(ctx context.Context, userID, id, rawText, transcript, audioURL string) (*models.Entry, error)
	UpdateTitle(ctx context.Context, userID, id, title string) error
	MarkProcessed(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
	Search(ctx context.Context, userID, query string, limit int) ([]*models.Entry, error)
	ListByMoodRange(ctx context.Context, userID string, minScore, maxScore, limit int) ([]*models.Entry, error)
}
