package services

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/logging"
	"github.com/mweller/jotter/internal/server/inference"
	"github.com/mweller/jotter/internal/server/models"
	"github.com/mweller/jotter/internal/server/repositories/repomanager"
)

// resummarizeThreshold is the text-difference score (percent) above which an
// existing title/summary is considered stale.
const resummarizeThreshold = 20

// TitleSummarizer produces a (title, summary) pair for journal text. It is
// expected to degrade internally rather than fail.
type TitleSummarizer interface {
	GenerateTitleAndSummary(ctx context.Context, text string) inference.TitleSummary
}

// Invalidator is notified after a successful title or summary write so cached
// views of the entry can be refreshed. Implementations must be cheap; errors
// are not part of the contract.
type Invalidator interface {
	InvalidateEntry(ctx context.Context, userID, entryID string)
}

// SummarizeResult reports the two writes independently. A failed title write
// does not block the summary write or vice versa; callers must inspect both
// flags rather than treat the call as atomic.
type SummarizeResult struct {
	TitleSuccess   bool   `json:"title_success"`
	SummarySuccess bool   `json:"summary_success"`
	Error          string `json:"error,omitempty"`
}

// InsightService decides when an entry needs fresh AI enrichment and applies
// the resulting writes.
type InsightService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	summarizer  TitleSummarizer
	invalidator Invalidator
	logger      logging.Logger
}

// NewInsightService constructs an InsightService.
func NewInsightService(db *sql.DB, m repomanager.RepositoryManager, summarizer TitleSummarizer, invalidator Invalidator, logger logging.Logger) *InsightService {
	return &InsightService{db: db, repomanager: m, summarizer: summarizer, invalidator: invalidator, logger: logger}
}

// TextDifference scores how much newText diverges from oldText as a
// percentage. 100 when there was no prior text, 0 when identical, otherwise a
// length-based heuristic with a 10% floor. It deliberately ignores content:
// the score depends only on the two lengths and equality, so same-length
// rewrites go undetected. Cheap over accurate.
func TextDifference(oldText, newText string) float64 {
	if oldText == "" {
		return 100
	}
	if oldText == newText {
		return 0
	}

	oldLen := float64(len(oldText))
	newLen := float64(len(newText))
	maxLen := math.Max(oldLen, newLen)
	minLen := math.Min(oldLen, newLen)

	similarity := math.Max(math.Abs(maxLen-minLen), maxLen*0.1)
	return similarity / maxLen * 100
}

// SummarizeAndTitle refreshes the entry's title and insight summary when the
// current text has drifted far enough from what was last summarized. At most
// one generation call is made; if neither field is stale the call
// short-circuits without touching the summarizer.
func (s *InsightService) SummarizeAndTitle(ctx context.Context, userID, entryID, currentText string) SummarizeResult {
	entryRepo := s.repomanager.Entries(s.db)
	insightRepo := s.repomanager.Insights(s.db)

	entry, err := entryRepo.GetByID(ctx, userID, entryID)
	if err != nil {
		return SummarizeResult{Error: "Entry not found or access denied"}
	}

	var existingSummary string
	insight, err := insightRepo.GetByEntryID(ctx, userID, entryID)
	switch {
	case err == nil:
		existingSummary = insight.Summary
	case errors.Is(err, common.ErrorNotFound):
		// No insight yet; it is created lazily below.
	default:
		return SummarizeResult{Error: "Failed to load existing insight"}
	}

	diff := TextDifference(entry.RawText, currentText)
	needsTitle := entry.Title == "" || diff >= resummarizeThreshold
	needsSummary := existingSummary == "" || diff >= resummarizeThreshold

	if !needsTitle && !needsSummary {
		return SummarizeResult{TitleSuccess: true, SummarySuccess: true}
	}

	generated := s.summarizer.GenerateTitleAndSummary(ctx, currentText)

	titleSuccess := !needsTitle
	summarySuccess := !needsSummary

	if needsTitle {
		if err := entryRepo.UpdateTitle(ctx, userID, entryID, generated.Title); err != nil {
			s.logger.Error(ctx, "failed to update title", "entry_id", entryID, "error", err)
		} else {
			titleSuccess = true
		}
	}

	if needsSummary {
		var writeErr error
		if insight != nil {
			writeErr = insightRepo.UpdateSummary(ctx, userID, entryID, generated.Summary)
		} else {
			_, writeErr = insightRepo.Insert(ctx, &models.Insight{
				EntryID: entryID,
				UserID:  userID,
				Summary: generated.Summary,
			})
		}
		if writeErr != nil {
			s.logger.Error(ctx, "failed to write summary", "entry_id", entryID, "error", writeErr)
		} else {
			summarySuccess = true
		}
	}

	if titleSuccess || summarySuccess {
		s.invalidator.InvalidateEntry(ctx, userID, entryID)
	}

	return SummarizeResult{TitleSuccess: titleSuccess, SummarySuccess: summarySuccess}
}

// GetInsight returns the stored insight for an owned entry.
func (s *InsightService) GetInsight(ctx context.Context, userID, entryID string) (*models.Insight, error) {
	return s.repomanager.Insights(s.db).GetByEntryID(ctx, userID, entryID)
}

// LogInvalidator is the default Invalidator: the server keeps no view cache,
// so refreshing is just a log line marking that downstream views are stale.
type LogInvalidator struct {
	logger logging.Logger
}

// NewLogInvalidator constructs a LogInvalidator.
func NewLogInvalidator(logger logging.Logger) *LogInvalidator {
	return &LogInvalidator{logger: logger}
}

func (l *LogInvalidator) InvalidateEntry(ctx context.Context, userID, entryID string) {
	l.logger.Info(ctx, "entry views invalidated", "user_id", userID, "entry_id", entryID)
}
