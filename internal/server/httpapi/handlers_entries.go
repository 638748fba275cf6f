package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/server/models"
)

// maxAudioUploadBytes caps multipart audio uploads (25 MiB).
const maxAudioUploadBytes = 25 << 20

func queryInt(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	list, err := s.entries.List(r.Context(), s.userID(r),
		queryInt(r, "limit", 0), queryInt(r, "offset", 0), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createEntryRequest struct {
	EntryType  string   `json:"entry_type"`
	RawText    string   `json:"raw_text,omitempty"`
	MoodScore  *int     `json:"mood_score,omitempty"`
	Categories []string `json:"category_ids,omitempty"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.entries.Create(r.Context(), s.userID(r), &models.Entry{
		EntryType:   req.EntryType,
		RawText:     req.RawText,
		Transcript:  req.RawText,
		MoodScore:   req.MoodScore,
		CategoryIDs: req.Categories,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type saveTextRequest struct {
	Text    string  `json:"text"`
	EntryID *string `json:"entry_id,omitempty"`
}

// handleSaveText is the manual-save pipeline entry point: persist, then
// best-effort summarize and mark processed.
func (s *Server) handleSaveText(w http.ResponseWriter, r *http.Request) {
	var req saveTextRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.pipeline.SaveTextEntry(r.Context(), s.userID(r), req.Text, req.EntryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleProcessAudio accepts a multipart form with an "audio" file part and
// an optional "entry_id" field, and runs the voice pipeline.
func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadBytes)
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: invalid multipart form", common.ErrValidation))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, fmt.Errorf("%w: missing audio file", common.ErrValidation))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: unreadable audio file", common.ErrValidation))
		return
	}

	var existingEntryID *string
	if id := r.FormValue("entry_id"); id != "" {
		existingEntryID = &id
	}

	result := s.pipeline.ProcessAudioEntry(r.Context(), s.userID(r), header.Filename, audio, existingEntryID)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearchEntries(w http.ResponseWriter, r *http.Request) {
	list, err := s.entries.Search(r.Context(), s.userID(r), r.URL.Query().Get("q"), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleEntriesByMood(w http.ResponseWriter, r *http.Request) {
	list, err := s.entries.ListByMoodRange(r.Context(), s.userID(r),
		queryInt(r, "min", 0), queryInt(r, "max", 10), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.entries.Get(r.Context(), s.userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type updateEntryRequest struct {
	Text             string `json:"text"`
	ExpectedRevision *int64 `json:"expected_revision,omitempty"`
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.entries.UpdateText(r.Context(), s.userID(r), chi.URLParam(r, "id"), req.Text, req.ExpectedRevision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Delete(r.Context(), s.userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summarizeRequest struct {
	Text string `json:"text"`
}

// handleSummarize triggers change detection for an entry. When the body
// carries no text the entry's stored raw text is used.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	userID := s.userID(r)
	entryID := chi.URLParam(r, "id")

	text := req.Text
	if text == "" {
		entry, err := s.entries.Get(r.Context(), userID, entryID)
		if err != nil {
			writeError(w, err)
			return
		}
		text = entry.RawText
	}

	// Partial success is representable: callers inspect both flags.
	writeJSON(w, http.StatusOK, s.insights.SummarizeAndTitle(r.Context(), userID, entryID, text))
}

func (s *Server) handleGetInsight(w http.ResponseWriter, r *http.Request) {
	insight, err := s.insights.GetInsight(r.Context(), s.userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}
