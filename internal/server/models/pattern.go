package models

import "time"

// Pattern is a stored cross-entry observation (e.g. recurring themes).
// Pattern generation happens offline; the server only serves them.
type Pattern struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PatternType     string    `json:"pattern_type"`
	Description     string    `json:"description"`
	ConfidenceScore float64   `json:"confidence_score"`
	RelatedEntryIDs []string  `json:"related_entry_ids,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}
