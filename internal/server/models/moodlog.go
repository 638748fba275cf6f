package models

import "time"

// MoodLog is a standalone mood check-in, independent of journal entries.
type MoodLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MoodScore   int       `json:"mood_score"`
	EnergyLevel int       `json:"energy_level"`
	DayWord     string    `json:"day_word,omitempty"`
	Emotions    []string  `json:"emotions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MoodDayAverage is one bucket of the daily mood aggregate used by the
// dashboard charts.
type MoodDayAverage struct {
	Day       time.Time `json:"day"`
	AvgMood   float64   `json:"avg_mood"`
	AvgEnergy float64   `json:"avg_energy"`
	Count     int       `json:"count"`
}
