// Package patterns provides the PostgreSQL-backed read side for stored
// cross-entry patterns.
package patterns

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mweller/jotter/internal/dbx"
	"github.com/mweller/jotter/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Pattern, error) {
	query := `
		SELECT id, user_id, pattern_type, description, confidence_score, related_entry_ids, generated_at
		FROM patterns
		WHERE user_id = $1
		ORDER BY generated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select patterns: %w", err)
	}
	defer rows.Close()

	var result []*models.Pattern
	for rows.Next() {
		var item models.Pattern
		var patternType, description sql.NullString
		var confidence sql.NullFloat64
		var related []byte
		if err := rows.Scan(&item.ID, &item.UserID, &patternType, &description, &confidence, &related, &item.GeneratedAt); err != nil {
			return nil, err
		}
		item.PatternType = patternType.String
		item.Description = description.String
		item.ConfidenceScore = confidence.Float64
		if len(related) > 0 {
			if err := json.Unmarshal(related, &item.RelatedEntryIDs); err != nil {
				return nil, fmt.Errorf("related entry ids decode error: %w", err)
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
