package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/server/models"
	"github.com/mweller/jotter/internal/server/repositories/repomanager"
)

const defaultListLimit = 20

// EntryService implements owner-scoped CRUD over journal entries.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewEntryService constructs an EntryService.
func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, repomanager: m}
}

func validateEntry(entry *models.Entry) error {
	switch entry.EntryType {
	case models.EntryTypeText:
		if strings.TrimSpace(entry.RawText) == "" {
			return common.ErrEmptyContent
		}
	case models.EntryTypeVoice:
		if entry.AudioURL == "" {
			return common.ErrMissingAudioURL
		}
	case models.EntryTypeCheckin:
		// Check-ins may be empty; they carry only a mood score.
	default:
		return fmt.Errorf("%w: unknown entry type %q", common.ErrValidation, entry.EntryType)
	}
	if entry.MoodScore != nil && (*entry.MoodScore < 0 || *entry.MoodScore > 10) {
		return common.ErrInvalidMood
	}
	return nil
}

// Create validates and inserts a new entry owned by userID.
func (s *EntryService) Create(ctx context.Context, userID string, entry *models.Entry) (*models.Entry, error) {
	entry.UserID = userID
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	return s.repomanager.Entries(s.db).Create(ctx, entry)
}

// Get returns one owned entry.
func (s *EntryService) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	return s.repomanager.Entries(s.db).GetByID(ctx, userID, id)
}

// List returns owned entries, newest first. entryType filters by kind when
// non-empty; limit falls back to a default when out of range.
func (s *EntryService) List(ctx context.Context, userID string, limit, offset int, entryType string) ([]*models.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repomanager.Entries(s.db).List(ctx, userID, limit, offset, entryType)
}

// UpdateText replaces the text of an owned entry; the transcript mirrors the
// raw text. Passing expectedRevision turns the write into a compare-and-swap.
func (s *EntryService) UpdateText(ctx context.Context, userID, id, text string, expectedRevision *int64) (*models.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyContent
	}
	return s.repomanager.Entries(s.db).UpdateText(ctx, userID, id, text, text, expectedRevision)
}

// Delete removes an owned entry.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Entries(s.db).Delete(ctx, userID, id)
}

// Search returns owned entries whose text matches query.
func (s *EntryService) Search(ctx context.Context, userID, query string, limit int) ([]*models.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is empty", common.ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	return s.repomanager.Entries(s.db).Search(ctx, userID, query, limit)
}

// ListByMoodRange returns owned entries scored within [minScore, maxScore].
func (s *EntryService) ListByMoodRange(ctx context.Context, userID string, minScore, maxScore, limit int) ([]*models.Entry, error) {
	if minScore < 0 || maxScore > 10 || minScore > maxScore {
		return nil, common.ErrInvalidMood
	}
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	return s.repomanager.Entries(s.db).ListByMoodRange(ctx, userID, minScore, maxScore, limit)
}
