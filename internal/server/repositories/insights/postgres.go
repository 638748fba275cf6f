// Package insights provides the PostgreSQL-backed repository for AI-derived
// entry annotations.
package insights

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

// PostgresRepository implements insight storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEntryID returns the insight attached to entryID for userID, or
// common.ErrorNotFound when none exists yet.
func (r *PostgresRepository) GetByEntryID(ctx context.Context, userID, entryID string) (*models.Insight, error) {
	query := `
		SELECT id, entry_id, user_id, summary, sentiment_score, emotions, created_at, updated_at
		FROM insights
		WHERE entry_id = $1 AND user_id = $2`

	var ins models.Insight
	var summary sql.NullString
	var sentiment sql.NullFloat64
	var emotions []byte

	err := r.db.QueryRowContext(ctx, query, entryID, userID).Scan(
		&ins.ID, &ins.EntryID, &ins.UserID, &summary, &sentiment, &emotions,
		&ins.CreatedAt, &ins.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	ins.Summary = summary.String
	if sentiment.Valid {
		v := sentiment.Float64
		ins.SentimentScore = &v
	}
	if len(emotions) > 0 {
		if err := json.Unmarshal(emotions, &ins.Emotions); err != nil {
			return nil, fmt.Errorf("emotions decode error: %w", err)
		}
	}
	return &ins, nil
}

// Insert creates the first insight row for an entry.
func (r *PostgresRepository) Insert(ctx context.Context, insight *models.Insight) (*models.Insight, error) {
	if insight.ID == "" {
		insight.ID = uuid.NewString()
	}

	var emotions any
	if len(insight.Emotions) > 0 {
		raw, err := json.Marshal(insight.Emotions)
		if err != nil {
			return nil, fmt.Errorf("emotions encode error: %w", err)
		}
		emotions = raw
	}

	var summary any
	if insight.Summary != "" {
		summary = insight.Summary
	}

	query := `
		INSERT INTO insights (id, entry_id, user_id, summary, sentiment_score, emotions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		insight.ID, insight.EntryID, insight.UserID, summary, insight.SentimentScore, emotions).
		Scan(&insight.CreatedAt, &insight.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return insight, nil
}

// UpdateSummary replaces the summary of an existing insight.
func (r *PostgresRepository) UpdateSummary(ctx context.Context, userID, entryID, summary string) error {
	query := `UPDATE insights SET summary = $1, updated_at = now() WHERE entry_id = $2 AND user_id = $3`

	res, err := r.db.ExecContext(ctx, query, summary, entryID, userID)
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
