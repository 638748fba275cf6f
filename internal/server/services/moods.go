package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/server/models"
	"github.com/mweller/jotter/internal/server/repositories/repomanager"
)

// MoodLogInput carries one mood check-in from the client.
type MoodLogInput struct {
	MoodScore   int      `json:"mood_score"`
	EnergyLevel int      `json:"energy_level"`
	DayWord     string   `json:"day_word,omitempty"`
	Emotions    []string `json:"emotions,omitempty"`
}

// MoodService handles standalone mood check-ins and their aggregates.
type MoodService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewMoodService constructs a MoodService.
func NewMoodService(db *sql.DB, m repomanager.RepositoryManager) *MoodService {
	return &MoodService{db: db, repomanager: m}
}

// Log records a check-in. Scores live on a 0-10 scale.
func (s *MoodService) Log(ctx context.Context, userID string, input MoodLogInput) (*models.MoodLog, error) {
	if input.MoodScore < 0 || input.MoodScore > 10 || input.EnergyLevel < 0 || input.EnergyLevel > 10 {
		return nil, common.ErrInvalidMood
	}
	return s.repomanager.MoodLogs(s.db).Insert(ctx, &models.MoodLog{
		UserID:      userID,
		MoodScore:   input.MoodScore,
		EnergyLevel: input.EnergyLevel,
		DayWord:     input.DayWord,
		Emotions:    input.Emotions,
	})
}

// History returns check-ins inside [from, to].
func (s *MoodService) History(ctx context.Context, userID string, from, to time.Time) ([]*models.MoodLog, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	return s.repomanager.MoodLogs(s.db).ListRange(ctx, userID, from, to)
}

// DailyAverages returns per-day mood/energy averages over the trailing days
// window, for the dashboard charts.
func (s *MoodService) DailyAverages(ctx context.Context, userID string, days int) ([]*models.MoodDayAverage, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repomanager.MoodLogs(s.db).DailyAverages(ctx, userID, since)
}
