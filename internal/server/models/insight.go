package models

import "time"

// Insight is the AI-derived annotation for one entry (at most one per entry,
// keyed by EntryID). It is created lazily on the first successful
// summarization and updated in place afterwards.
type Insight struct {
	ID             string             `json:"id"`
	EntryID        string             `json:"entry_id"`
	UserID         string             `json:"user_id"`
	Summary        string             `json:"summary,omitempty"`
	SentimentScore *float64           `json:"sentiment_score,omitempty"`
	Emotions       map[string]float64 `json:"emotions,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
