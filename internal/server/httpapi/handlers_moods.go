package httpapi

import (
	"net/http"
	"time"

	"github.com/mweller/jotter/internal/server/services"
)

func queryTime(r *http.Request, name string) time.Time {
	if raw := r.URL.Query().Get(name); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *Server) handleLogMood(w http.ResponseWriter, r *http.Request) {
	var input services.MoodLogInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	log, err := s.moods.Log(r.Context(), s.userID(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.moods.History(r.Context(), s.userID(r), queryTime(r, "from"), queryTime(r, "to"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMoodDaily(w http.ResponseWriter, r *http.Request) {
	list, err := s.moods.DailyAverages(r.Context(), s.userID(r), queryInt(r, "days", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
