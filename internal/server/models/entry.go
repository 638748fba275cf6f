// Package models defines the persisted data shapes shared by repositories
// and services.
package models

import "time"

// Entry kinds. A text entry must carry raw text at creation; a voice entry
// must carry an audio URL.
const (
	EntryTypeText    = "text"
	EntryTypeVoice   = "voice"
	EntryTypeCheckin = "checkin"
)

// Entry is a single journaling unit. RawText, Transcript, AudioURL and Title
// use "" for absent; MoodScore uses nil because 0 is a valid score.
//
// Revision is bumped by every update. Updates normally run last-write-wins;
// callers that pass an expected revision get ErrRevisionConflict on mismatch.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EntryType   string    `json:"entry_type"`
	RawText     string    `json:"raw_text,omitempty"`
	Transcript  string    `json:"transcript,omitempty"`
	AudioURL    string    `json:"audio_url,omitempty"`
	Title       string    `json:"title,omitempty"`
	MoodScore   *int      `json:"mood_score,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
	Processed   bool      `json:"processed"`
	Revision    int64     `json:"revision"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
