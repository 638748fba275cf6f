package services

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/mweller/jotter/internal/dbx"
	"github.com/mweller/jotter/internal/logging"
	"github.com/mweller/jotter/internal/server/inference"
	"github.com/mweller/jotter/internal/server/models"
	"github.com/mweller/jotter/internal/server/repositories/categories"
	"github.com/mweller/jotter/internal/server/repositories/entries"
	"github.com/mweller/jotter/internal/server/repositories/insights"
	"github.com/mweller/jotter/internal/server/repositories/moodlogs"
	"github.com/mweller/jotter/internal/server/repositories/patterns"
	"github.com/mweller/jotter/internal/server/repositories/refreshtokens"
	"github.com/mweller/jotter/internal/server/repositories/users"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// fakeRepoManager hands out whatever fakes the test has configured,
// regardless of the DBTX it is given.
type fakeRepoManager struct {
	entriesRepo  entries.Repository
	insightsRepo insights.Repository
	usersRepo    users.Repository
	tokensRepo   refreshtokens.Repository
	moodsRepo    moodlogs.Repository
	catsRepo     categories.Repository
	patternsRepo patterns.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.usersRepo }

func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokensRepo }

func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository { return m.entriesRepo }

func (m *fakeRepoManager) Insights(dbx.DBTX) insights.Repository { return m.insightsRepo }

func (m *fakeRepoManager) MoodLogs(dbx.DBTX) moodlogs.Repository { return m.moodsRepo }

func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository { return m.catsRepo }

func (m *fakeRepoManager) Patterns(dbx.DBTX) patterns.Repository { return m.patternsRepo }

// fakeEntriesRepo implements entries.Repository via function fields; the
// embedded interface makes unconfigured calls panic loudly.
type fakeEntriesRepo struct {
	entries.Repository

	createFn        func(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	getByIDFn       func(ctx context.Context, userID, id string) (*models.Entry, error)
	updateTextFn    func(ctx context.Context, userID, id, rawText, transcript string, expectedRevision *int64) (*models.Entry, error)
	updateAudioFn   func(ctx context.Context, userID, id, rawText, transcript, audioURL string) (*models.Entry, error)
	updateTitleFn   func(ctx context.Context, userID, id, title string) error
	markProcessedFn func(ctx context.Context, userID, id string) error
}

func (f *fakeEntriesRepo) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	return f.createFn(ctx, entry)
}

func (f *fakeEntriesRepo) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	return f.getByIDFn(ctx, userID, id)
}

func (f *fakeEntriesRepo) UpdateText(ctx context.Context, userID, id, rawText, transcript string, expectedRevision *int64) (*models.Entry, error) {
	return f.updateTextFn(ctx, userID, id, rawText, transcript, expectedRevision)
}

func (f *fakeEntriesRepo) UpdateAudio(ctx context.Context, userID, id, rawText, transcript, audioURL string) (*models.Entry, error) {
	return f.updateAudioFn(ctx, userID, id, rawText, transcript, audioURL)
}

func (f *fakeEntriesRepo) UpdateTitle(ctx context.Context, userID, id, title string) error {
	return f.updateTitleFn(ctx, userID, id, title)
}

func (f *fakeEntriesRepo) MarkProcessed(ctx context.Context, userID, id string) error {
	return f.markProcessedFn(ctx, userID, id)
}

type fakeInsightsRepo struct {
	insights.Repository

	getByEntryIDFn  func(ctx context.Context, userID, entryID string) (*models.Insight, error)
	insertFn        func(ctx context.Context, insight *models.Insight) (*models.Insight, error)
	updateSummaryFn func(ctx context.Context, userID, entryID, summary string) error
}

func (f *fakeInsightsRepo) GetByEntryID(ctx context.Context, userID, entryID string) (*models.Insight, error) {
	return f.getByEntryIDFn(ctx, userID, entryID)
}

func (f *fakeInsightsRepo) Insert(ctx context.Context, insight *models.Insight) (*models.Insight, error) {
	return f.insertFn(ctx, insight)
}

func (f *fakeInsightsRepo) UpdateSummary(ctx context.Context, userID, entryID, summary string) error {
	return f.updateSummaryFn(ctx, userID, entryID, summary)
}

type fakeUsersRepo struct {
	users.Repository

	createFn     func(ctx context.Context, user *models.User) (*models.User, error)
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.createFn(ctx, user)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmailFn(ctx, email)
}

type fakeTokensRepo struct {
	refreshtokens.Repository

	createFn func(ctx context.Context, userID, token string, validity time.Duration) error
	findFn   func(ctx context.Context, token string) (*models.RefreshToken, error)
	deleteFn func(ctx context.Context, token string) error
}

func (f *fakeTokensRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	return f.createFn(ctx, userID, token, validity)
}

func (f *fakeTokensRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	return f.findFn(ctx, token)
}

func (f *fakeTokensRepo) Delete(ctx context.Context, token string) error {
	return f.deleteFn(ctx, token)
}

// fakeBlobStore implements storage.BlobStore.
type fakeBlobStore struct {
	uploadFn    func(ctx context.Context, key, contentType string, data []byte) error
	publicURLFn func(key string) string
	signedURLFn func(ctx context.Context, key string, expires time.Duration) (string, error)
}

func (f *fakeBlobStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	return f.uploadFn(ctx, key, contentType, data)
}

func (f *fakeBlobStore) PublicURL(key string) string {
	return f.publicURLFn(key)
}

func (f *fakeBlobStore) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return f.signedURLFn(ctx, key, expires)
}

type fakeTranscriber struct {
	transcribeFn func(ctx context.Context, audio []byte, contentType string) (string, error)
	calls        int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	f.calls++
	return f.transcribeFn(ctx, audio, contentType)
}

// fakeInsightSummarizer stands in for InsightService in pipeline tests.
type fakeInsightSummarizer struct {
	result SummarizeResult
	calls  []string
}

func (f *fakeInsightSummarizer) SummarizeAndTitle(ctx context.Context, userID, entryID, currentText string) SummarizeResult {
	f.calls = append(f.calls, entryID)
	return f.result
}

// fakeTitleSummarizer stands in for the inference.Summarizer in
// InsightService tests.
type fakeTitleSummarizer struct {
	pair  inference.TitleSummary
	calls int
}

func (f *fakeTitleSummarizer) GenerateTitleAndSummary(ctx context.Context, text string) inference.TitleSummary {
	f.calls++
	return f.pair
}

type recordingInvalidator struct {
	entryIDs []string
}

func (r *recordingInvalidator) InvalidateEntry(ctx context.Context, userID, entryID string) {
	r.entryIDs = append(r.entryIDs, entryID)
}
