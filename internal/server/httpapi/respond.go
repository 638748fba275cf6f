package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mweller/jotter/internal/common"
)

// errorResponse is the envelope every failure crosses the HTTP boundary in.
// Raw errors never reach the client.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists), errors.Is(err, common.ErrRevisionConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrEmptyContent),
		errors.Is(err, common.ErrInvalidMood),
		errors.Is(err, common.ErrMissingAudioURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
