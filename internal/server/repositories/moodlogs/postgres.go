// Package moodlogs provides the PostgreSQL-backed repository for mood
// check-ins and their dashboard aggregates.
package moodlogs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mweller/jotter/internal/dbx"
	"github.com/mweller/jotter/internal/server/models"
)

// PostgresRepository implements mood log storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new mood check-in and returns it with the stored timestamp.
func (r *PostgresRepository) Insert(ctx context.Context, log *models.MoodLog) (*models.MoodLog, error) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	var emotions any
	if len(log.Emotions) > 0 {
		raw, err := json.Marshal(log.Emotions)
		if err != nil {
			return nil, fmt.Errorf("emotions encode error: %w", err)
		}
		emotions = raw
	}

	var dayWord any
	if log.DayWord != "" {
		dayWord = log.DayWord
	}

	query := `
		INSERT INTO mood_logs (id, user_id, mood_score, energy_level, day_word, emotions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		log.ID, log.UserID, log.MoodScore, log.EnergyLevel, dayWord, emotions).
		Scan(&log.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return log, nil
}

// ListRange returns check-ins for userID recorded in [from, to], oldest first.
func (r *PostgresRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*models.MoodLog, error) {
	query := `
		SELECT id, user_id, mood_score, energy_level, day_word, emotions, created_at
		FROM mood_logs
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to select mood logs: %w", err)
	}
	defer rows.Close()

	var result []*models.MoodLog
	for rows.Next() {
		var item models.MoodLog
		var dayWord sql.NullString
		var energy sql.NullInt64
		var emotions []byte
		if err := rows.Scan(&item.ID, &item.UserID, &item.MoodScore, &energy, &dayWord, &emotions, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.DayWord = dayWord.String
		item.EnergyLevel = int(energy.Int64)
		if len(emotions) > 0 {
			if err := json.Unmarshal(emotions, &item.Emotions); err != nil {
				return nil, fmt.Errorf("emotions decode error: %w", err)
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DailyAverages aggregates mood and energy per day since the given time.
func (r *PostgresRepository) DailyAverages(ctx context.Context, userID string, since time.Time) ([]*models.MoodDayAverage, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day,
		       avg(mood_score), avg(coalesce(energy_level, 0)), count(*)
		FROM mood_logs
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate mood logs: %w", err)
	}
	defer rows.Close()

	var result []*models.MoodDayAverage
	for rows.Next() {
		var item models.MoodDayAverage
		if err := rows.Scan(&item.Day, &item.AvgMood, &item.AvgEnergy, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
