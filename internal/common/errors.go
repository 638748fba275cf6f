// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrRevisionConflict = errors.New("revision conflict")

	// Validation errors.
	ErrValidation      = errors.New("validation failed")
	ErrEmptyContent    = errors.New("empty content")
	ErrInvalidMood     = errors.New("mood score out of range")
	ErrMissingAudioURL = errors.New("audio url required for voice entries")

	// Pipeline step errors. Only the upload step is retried; the others
	// surface to the caller on first failure.
	ErrUploadFailed        = errors.New("audio upload failed")
	ErrAudioFetchFailed    = errors.New("audio fetch failed")
	ErrTranscriptionFailed = errors.New("transcription failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
