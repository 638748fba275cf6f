package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/logging"
	"github.com/mweller/jotter/internal/server/inference"
	"github.com/mweller/jotter/internal/server/models"
	"github.com/mweller/jotter/internal/server/repositories/repomanager"
	"github.com/mweller/jotter/internal/server/storage"
)

const (
	// uploadMaxAttempts bounds the blob upload retry loop; it is the only
	// automatically retried step in the pipeline.
	uploadMaxAttempts = 5
	uploadBaseDelay   = 1 * time.Second
	uploadMaxDelay    = 10 * time.Second

	// signedURLValidity only needs to cover the pipeline's own fetch of the
	// just-uploaded bytes.
	signedURLValidity = 100 * time.Second

	// Transcripts at or under this length skip summarization on the voice
	// path; text entries use the larger textSummarizeThreshold.
	voiceSummarizeThreshold = 20
	textSummarizeThreshold  = 100

	defaultAudioExt = "webm"
)

// Summarizer is the change-detection entry point the pipeline calls after a
// successful save. It reports per-field outcomes and never panics.
type Summarizer interface {
	SummarizeAndTitle(ctx context.Context, userID, entryID, currentText string) SummarizeResult
}

// AudioResult is the outcome of one voice pipeline run. On success Entry,
// AudioURL (always the durable public URL, never the signed one) and
// Transcript are set; on failure only Error is.
type AudioResult struct {
	Success    bool          `json:"success"`
	Entry      *models.Entry `json:"entry,omitempty"`
	AudioURL   string        `json:"audio_url,omitempty"`
	Transcript string        `json:"transcript,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// PipelineService orchestrates the voice and text entry pipelines: persist
// content first, enrich best-effort after.
type PipelineService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	transcriber inference.Transcriber
	insights    Summarizer
	httpClient  *http.Client
	logger      logging.Logger
	now         func() time.Time

	// newUploadBackoff builds the retry policy for one upload. It is a field
	// so tests can substitute a no-delay policy.
	newUploadBackoff func() retry.Backoff
}

// NewPipelineService constructs a PipelineService. httpClient is used for the
// server-side fetch of uploaded audio; nil falls back to the default client.
func NewPipelineService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore,
	transcriber inference.Transcriber, insights Summarizer, httpClient *http.Client, logger logging.Logger) *PipelineService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PipelineService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		transcriber: transcriber,
		insights:    insights,
		httpClient:  httpClient,
		logger:      logger,
		now:         time.Now,
		newUploadBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(uploadMaxAttempts-1,
				retry.WithCappedDuration(uploadMaxDelay, retry.NewExponential(uploadBaseDelay)))
		},
	}
}

// storageKey derives a per-upload-unique object key from the owner and the
// current time, with a normalized extension from the client's filename hint.
func (s *PipelineService) storageKey(userID, filename string) (key, ext string) {
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = defaultAudioExt
	}
	return fmt.Sprintf("%s/%d.%s", userID, s.now().UnixMilli(), ext), ext
}

func contentTypeForExt(ext string) string {
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "audio/" + ext
}

// ProcessAudioEntry runs the voice pipeline: upload (retried), transcribe,
// upsert, summarize (best-effort), mark processed. When existingEntryID is
// set the entry is updated in place, scoped to the owner.
func (s *PipelineService) ProcessAudioEntry(ctx context.Context, userID, filename string, audio []byte, existingEntryID *string) AudioResult {
	log := s.logger.With("user_id", userID)

	key, ext := s.storageKey(userID, filename)
	contentType := contentTypeForExt(ext)

	if err := s.uploadWithRetry(ctx, log, key, contentType, audio); err != nil {
		return AudioResult{Error: fmt.Sprintf("Upload error: %v", err)}
	}

	publicURL := s.blobs.PublicURL(key)

	// The bucket is not world-readable for direct server fetch; a short-lived
	// signed URL covers the pipeline's own read while the public URL is what
	// gets persisted for clients.
	signedURL, err := s.blobs.SignedURL(ctx, key, signedURLValidity)
	if err != nil {
		return AudioResult{Error: fmt.Sprintf("Failed to sign audio URL: %v", err)}
	}

	audioBytes, err := s.fetchAudio(ctx, signedURL)
	if err != nil {
		return AudioResult{Error: fmt.Sprintf("Audio fetch error: %v", err)}
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioBytes, contentType)
	if err != nil {
		return AudioResult{Error: fmt.Sprintf("Transcription error: %v", err)}
	}

	entryRepo := s.repomanager.Entries(s.db)
	var entry *models.Entry
	if existingEntryID != nil {
		entry, err = entryRepo.UpdateAudio(ctx, userID, *existingEntryID, transcript, transcript, publicURL)
	} else {
		entry, err = entryRepo.Create(ctx, &models.Entry{
			UserID:     userID,
			EntryType:  models.EntryTypeVoice,
			RawText:    transcript,
			Transcript: transcript,
			AudioURL:   publicURL,
			Processed:  false,
		})
	}
	if err != nil {
		return AudioResult{Error: fmt.Sprintf("Database error: %v", err)}
	}

	s.enrichAndMarkProcessed(ctx, log, userID, entry.ID, transcript, voiceSummarizeThreshold)

	return AudioResult{
		Success:    true,
		Entry:      entry,
		AudioURL:   publicURL,
		Transcript: transcript,
	}
}

// SaveTextEntry persists a manual text save and runs the same enrichment
// tail as the voice path, with a higher length threshold.
func (s *PipelineService) SaveTextEntry(ctx context.Context, userID, text string, existingEntryID *string) (*models.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyContent
	}

	entryRepo := s.repomanager.Entries(s.db)
	var entry *models.Entry
	var err error
	if existingEntryID != nil {
		entry, err = entryRepo.UpdateText(ctx, userID, *existingEntryID, text, text, nil)
	} else {
		entry, err = entryRepo.Create(ctx, &models.Entry{
			UserID:     userID,
			EntryType:  models.EntryTypeText,
			RawText:    text,
			Transcript: text,
			Processed:  false,
		})
	}
	if err != nil {
		return nil, err
	}

	s.enrichAndMarkProcessed(ctx, s.logger.With("user_id", userID), userID, entry.ID, text, textSummarizeThreshold)

	return entry, nil
}

// uploadWithRetry uploads the blob with exponential backoff. Exhausting the
// retry budget is the terminal upload error; nothing downstream runs.
func (s *PipelineService) uploadWithRetry(ctx context.Context, log logging.Logger, key, contentType string, data []byte) error {
	attempt := 0
	err := retry.Do(ctx, s.newUploadBackoff(), func(ctx context.Context) error {
		attempt++
		if err := s.blobs.Upload(ctx, key, contentType, data); err != nil {
			log.Warn(ctx, "audio upload attempt failed",
				"key", key, "attempt", attempt, "remaining", uploadMaxAttempts-attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	return nil
}

func (s *PipelineService) fetchAudio(ctx context.Context, signedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAudioFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", common.ErrAudioFetchFailed, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// enrichAndMarkProcessed runs the best-effort tail shared by both paths:
// summarize when the content is long enough, then flip processed. Neither
// step can fail the operation that got the content saved.
func (s *PipelineService) enrichAndMarkProcessed(ctx context.Context, log logging.Logger, userID, entryID, text string, threshold int) {
	if len(text) > threshold {
		result := s.insights.SummarizeAndTitle(ctx, userID, entryID, text)
		if !result.TitleSuccess || !result.SummarySuccess {
			log.Warn(ctx, "partial summary/title generation",
				"entry_id", entryID, "title_success", result.TitleSuccess,
				"summary_success", result.SummarySuccess, "error", result.Error)
		}
	}

	if err := s.repomanager.Entries(s.db).MarkProcessed(ctx, userID, entryID); err != nil {
		log.Error(ctx, "failed to mark entry as processed", "entry_id", entryID, "error", err)
	}
}
