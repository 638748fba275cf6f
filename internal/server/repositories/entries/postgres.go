// Package entries provides the PostgreSQL-backed repository for journal
// entry persistence.
package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/dbx"
	"github.com/mweller/jotter/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const entryColumns = `id, user_id, entry_type, raw_text, transcript, audio_url, title, mood_score, category_ids, processed, revision, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var e models.Entry
	var rawText, transcript, audioURL, title sql.NullString
	var mood sql.NullInt64
	var cats []byte

	err := row.Scan(&e.ID, &e.UserID, &e.EntryType, &rawText, &transcript, &audioURL,
		&title, &mood, &cats, &e.Processed, &e.Revision, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.RawText = rawText.String
	e.Transcript = transcript.String
	e.AudioURL = audioURL.String
	e.Title = title.String
	if mood.Valid {
		score := int(mood.Int64)
		e.MoodScore = &score
	}
	if len(cats) > 0 {
		if err := json.Unmarshal(cats, &e.CategoryIDs); err != nil {
			return nil, fmt.Errorf("category ids decode error: %w", err)
		}
	}
	return &e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a new entry for entry.UserID and returns the stored row.
// The id is generated here when absent.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	var cats any
	if len(entry.CategoryIDs) > 0 {
		raw, err := json.Marshal(entry.CategoryIDs)
		if err != nil {
			return nil, fmt.Errorf("category ids encode error: %w", err)
		}
		cats = raw
	}

	var mood any
	if entry.MoodScore != nil {
		mood = *entry.MoodScore
	}

	query := `
		INSERT INTO entries (id, user_id, entry_type, raw_text, transcript, audio_url, title, mood_score, category_ids, processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + entryColumns

	row := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.EntryType,
		nullString(entry.RawText), nullString(entry.Transcript), nullString(entry.AudioURL),
		nullString(entry.Title), mood, cats, entry.Processed)

	created, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// GetByID returns the entry with the given id owned by userID.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND user_id = $2`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// List returns the newest entries for userID. entryType filters by kind when
// non-empty.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int, entryType string) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1`
	args := []any{userID}

	if entryType != "" {
		query += ` AND entry_type = $2`
		args = append(args, entryType)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return r.queryEntries(ctx, query, args...)
}

// UpdateText replaces the text fields of an owned entry and bumps its
// revision. See Repository for the expectedRevision contract.
func (r *PostgresRepository) UpdateText(ctx context.Context, userID, id, rawText, transcript string, expectedRevision *int64) (*models.Entry, error) {
	query := `
		UPDATE entries
		SET raw_text = $1, transcript = $2, revision = revision + 1, updated_at = now()
		WHERE id = $3 AND user_id = $4`
	args := []any{nullString(rawText), nullString(transcript), id, userID}

	if expectedRevision != nil {
		query += ` AND revision = $5`
		args = append(args, *expectedRevision)
	}
	query += ` RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if expectedRevision != nil {
				// Distinguish a missing row from a stale revision.
				if _, getErr := r.GetByID(ctx, userID, id); getErr == nil {
					return nil, common.ErrRevisionConflict
				}
			}
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// UpdateAudio replaces transcript, raw text and audio reference of an owned
// entry (the voice pipeline's update-in-place path).
func (r *PostgresRepository) UpdateAudio(ctx context.Context, userID, id, rawText, transcript, audioURL string) (*models.Entry, error) {
	query := `
		UPDATE entries
		SET raw_text = $1, transcript = $2, audio_url = $3, revision = revision + 1, updated_at = now()
		WHERE id = $4 AND user_id = $5
		RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query,
		nullString(rawText), nullString(transcript), nullString(audioURL), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// UpdateTitle sets the generated title of an owned entry.
func (r *PostgresRepository) UpdateTitle(ctx context.Context, userID, id, title string) error {
	query := `UPDATE entries SET title = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	return r.execExpectingRow(ctx, query, title, id, userID)
}

// MarkProcessed flips the processed flag of an owned entry.
func (r *PostgresRepository) MarkProcessed(ctx context.Context, userID, id string) error {
	query := `UPDATE entries SET processed = TRUE, updated_at = now() WHERE id = $1 AND user_id = $2`
	return r.execExpectingRow(ctx, query, id, userID)
}

// Delete removes an owned entry.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM entries WHERE id = $1 AND user_id = $2`
	return r.execExpectingRow(ctx, query, id, userID)
}

// Search returns entries whose raw text or transcript contains query,
// newest first.
func (r *PostgresRepository) Search(ctx context.Context, userID, query string, limit int) ([]*models.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = $1 AND (raw_text ILIKE '%' || $2 || '%' OR transcript ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC LIMIT $3`
	return r.queryEntries(ctx, q, userID, query, limit)
}

// ListByMoodRange returns entries with a mood score inside [minScore, maxScore].
func (r *PostgresRepository) ListByMoodRange(ctx context.Context, userID string, minScore, maxScore, limit int) ([]*models.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = $1 AND mood_score IS NOT NULL AND mood_score >= $2 AND mood_score <= $3
		ORDER BY created_at DESC LIMIT $4`
	return r.queryEntries(ctx, q, userID, minScore, maxScore, limit)
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
