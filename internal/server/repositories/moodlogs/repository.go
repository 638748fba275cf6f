package moodlogs

import (
	"context"
	"time"

	"github.com/mweller/jotter/internal/server/models"
)

// Repository persists standalone mood check-ins.
type Repository interface {
	Insert(ctx context.Context, log *models.MoodLog) (*models.MoodLog, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*models.MoodLog, error)
	DailyAverages(ctx context.Context, userID string, since time.Time) ([]*models.MoodDayAverage, error)
}
