package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/server/models"
)

func noDelayBackoff() retry.Backoff {
	return retry.WithMaxRetries(uploadMaxAttempts-1, retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	}))
}

func okBlobStore(publicURL, signedURL string) *fakeBlobStore {
	return &fakeBlobStore{
		uploadFn:    func(ctx context.Context, key, contentType string, data []byte) error { return nil },
		publicURLFn: func(key string) string { return publicURL },
		signedURLFn: func(ctx context.Context, key string, expires time.Duration) (string, error) {
			return signedURL, nil
		},
	}
}

func newPipeline(m *fakeRepoManager, blobs *fakeBlobStore, tr *fakeTranscriber, ins Summarizer, hc *http.Client) *PipelineService {
	p := NewPipelineService(nil, m, blobs, tr, ins, hc, testLogger())
	p.newUploadBackoff = noDelayBackoff
	return p
}

func TestProcessAudioEntry_Success(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("stored-audio-bytes"))
	}))
	defer audioSrv.Close()

	var created *models.Entry
	var processedID string
	entriesRepo := &fakeEntriesRepo{
		createFn: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			entry.ID = "e1"
			created = entry
			return entry, nil
		},
		markProcessedFn: func(ctx context.Context, userID, id string) error {
			processedID = id
			return nil
		},
	}
	tr := &fakeTranscriber{transcribeFn: func(ctx context.Context, audio []byte, contentType string) (string, error) {
		if string(audio) != "stored-audio-bytes" {
			t.Errorf("transcriber got %q", audio)
		}
		return "a transcript comfortably longer than twenty characters", nil
	}}
	ins := &fakeInsightSummarizer{result: SummarizeResult{TitleSuccess: true, SummarySuccess: true}}
	blobs := okBlobStore("https://cdn.example/audio-entries/u1/1.webm", audioSrv.URL)

	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, blobs, tr, ins, audioSrv.Client())
	res := p.ProcessAudioEntry(context.Background(), "u1", "take.webm", []byte("raw"), nil)

	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if res.AudioURL != "https://cdn.example/audio-entries/u1/1.webm" {
		t.Errorf("result must carry the public URL, got %q", res.AudioURL)
	}
	if created == nil || created.EntryType != models.EntryTypeVoice || created.Processed {
		t.Errorf("created = %+v", created)
	}
	if created.AudioURL != "https://cdn.example/audio-entries/u1/1.webm" {
		t.Errorf("persisted audio url = %q", created.AudioURL)
	}
	if len(ins.calls) != 1 || ins.calls[0] != "e1" {
		t.Errorf("summarize calls = %v", ins.calls)
	}
	if processedID != "e1" {
		t.Errorf("processed id = %q", processedID)
	}
	if res.Transcript != created.Transcript {
		t.Errorf("transcript mismatch: %q vs %q", res.Transcript, created.Transcript)
	}
}

func TestProcessAudioEntry_UploadExhaustedNoDownstreamEffects(t *testing.T) {
	uploads := 0
	blobs := &fakeBlobStore{
		uploadFn: func(ctx context.Context, key, contentType string, data []byte) error {
			uploads++
			return errors.New("bucket down")
		},
	}
	tr := &fakeTranscriber{transcribeFn: func(ctx context.Context, audio []byte, contentType string) (string, error) {
		return "should never run", nil
	}}
	entriesRepo := &fakeEntriesRepo{
		createFn: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			t.Fatal("no entry may be created after upload exhaustion")
			return nil, nil
		},
	}

	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, blobs, tr, &fakeInsightSummarizer{}, nil)
	res := p.ProcessAudioEntry(context.Background(), "u1", "take.webm", []byte("raw"), nil)

	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "Upload error") {
		t.Errorf("error = %q", res.Error)
	}
	if uploads != uploadMaxAttempts {
		t.Errorf("uploads = %d, want %d", uploads, uploadMaxAttempts)
	}
	if tr.calls != 0 {
		t.Errorf("transcriber called %d times", tr.calls)
	}
}

func TestProcessAudioEntry_AudioFetchError(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer audioSrv.Close()

	tr := &fakeTranscriber{transcribeFn: func(ctx context.Context, audio []byte, contentType string) (string, error) {
		return "unused", nil
	}}
	blobs := okBlobStore("https://cdn.example/a", audioSrv.URL)

	p := newPipeline(&fakeRepoManager{entriesRepo: &fakeEntriesRepo{}}, blobs, tr, &fakeInsightSummarizer{}, audioSrv.Client())
	res := p.ProcessAudioEntry(context.Background(), "u1", "a.webm", []byte("raw"), nil)

	if res.Success || !strings.Contains(res.Error, "Audio fetch error") {
		t.Fatalf("got %+v", res)
	}
	if tr.calls != 0 {
		t.Errorf("transcriber called %d times", tr.calls)
	}
}

func TestProcessAudioEntry_TranscriptionErrorNoPersist(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer audioSrv.Close()

	tr := &fakeTranscriber{transcribeFn: func(ctx context.Context, audio []byte, contentType string) (string, error) {
		return "", common.ErrTranscriptionFailed
	}}
	entriesRepo := &fakeEntriesRepo{
		createFn: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			t.Fatal("no entry may be created after transcription failure")
			return nil, nil
		},
	}
	blobs := okBlobStore("https://cdn.example/a", audioSrv.URL)

	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, blobs, tr, &fakeInsightSummarizer{}, audioSrv.Client())
	res := p.ProcessAudioEntry(context.Background(), "u1", "a.webm", []byte("raw"), nil)

	if res.Success || !strings.Contains(res.Error, "Transcription error") {
		t.Fatalf("got %+v", res)
	}
}

func TestProcessAudioEntry_UpdateInPlace(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer audioSrv.Close()

	var updatedID string
	entriesRepo := &fakeEntriesRepo{
		updateAudioFn: func(ctx context.Context, userID, id, rawText, transcript, audioURL string) (*models.Entry, error) {
			updatedID = id
			return &models.Entry{ID: id, UserID: userID, EntryType: models.EntryTypeVoice,
				RawText: rawText, Transcript: transcript, AudioURL: audioURL}, nil
		},
		markProcessedFn: func(ctx context.Context, userID, id string) error { return nil },
	}
	tr := &fakeTranscriber{transcribeFn: func(ctx context.Context, audio []byte, contentType string) (string, error) {
		return "short", nil
	}}
	blobs := okBlobStore("https://cdn.example/a", audioSrv.URL)
	ins := &fakeInsightSummarizer{}

	existing := "e9"
	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, blobs, tr, ins, audioSrv.Client())
	res := p.ProcessAudioEntry(context.Background(), "u1", "a.webm", []byte("raw"), &existing)

	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if updatedID != "e9" {
		t.Errorf("updated id = %q", updatedID)
	}
	// "short" is under the threshold, so no summarization.
	if len(ins.calls) != 0 {
		t.Errorf("summarize calls = %v", ins.calls)
	}
}

func TestProcessAudioEntry_MarkProcessedFailureStillSuccess(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer audioSrv.Close()

	entriesRepo := &fakeEntriesRepo{
		createFn: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			entry.ID = "e1"
			return entry, nil
		},
		markProcessedFn: func(ctx context.Context, userID, id string) error {
			return errors.New("flag write failed")
		},
	}
	tr := &fakeTranscriber{transcribeFn: func(ctx context.Context, audio []byte, contentType string) (string, error) {
		return "a transcript comfortably longer than twenty characters", nil
	}}
	blobs := okBlobStore("https://cdn.example/a", audioSrv.URL)

	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, blobs, tr,
		&fakeInsightSummarizer{result: SummarizeResult{TitleSuccess: true, SummarySuccess: true}}, audioSrv.Client())
	res := p.ProcessAudioEntry(context.Background(), "u1", "a.webm", []byte("raw"), nil)

	if !res.Success {
		t.Fatalf("mark-processed failure must not fail the run: %s", res.Error)
	}
}

func TestSaveTextEntry_LongTextSummarizedAndProcessed(t *testing.T) {
	text := strings.Repeat("today I wrote ", 11) // 154 chars, over the 100 threshold

	var created *models.Entry
	var processed bool
	entriesRepo := &fakeEntriesRepo{
		createFn: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			entry.ID = "e1"
			created = entry
			return entry, nil
		},
		markProcessedFn: func(ctx context.Context, userID, id string) error {
			processed = true
			return nil
		},
	}
	// Summarization reports failure; the save must still finish processed.
	ins := &fakeInsightSummarizer{result: SummarizeResult{Error: "model unavailable"}}

	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, nil, nil, ins, nil)
	entry, err := p.SaveTextEntry(context.Background(), "u1", text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "e1" {
		t.Errorf("entry = %+v", entry)
	}
	if created.EntryType != models.EntryTypeText || created.Transcript != text || created.Processed {
		t.Errorf("created = %+v", created)
	}
	if len(ins.calls) != 1 {
		t.Errorf("summarize calls = %v", ins.calls)
	}
	if !processed {
		t.Error("entry must be marked processed regardless of summarization outcome")
	}
}

func TestSaveTextEntry_ShortTextSkipsSummarization(t *testing.T) {
	entriesRepo := &fakeEntriesRepo{
		createFn: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			entry.ID = "e1"
			return entry, nil
		},
		markProcessedFn: func(ctx context.Context, userID, id string) error { return nil },
	}
	ins := &fakeInsightSummarizer{}

	p := newPipeline(&fakeRepoManager{entriesRepo: entriesRepo}, nil, nil, ins, nil)
	if _, err := p.SaveTextEntry(context.Background(), "u1", "a short note", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ins.calls) != 0 {
		t.Errorf("summarize calls = %v", ins.calls)
	}
}

func TestSaveTextEntry_EmptyTextRejected(t *testing.T) {
	p := newPipeline(&fakeRepoManager{}, nil, nil, &fakeInsightSummarizer{}, nil)
	if _, err := p.SaveTextEntry(context.Background(), "u1", "   \n", nil); !errors.Is(err, common.ErrEmptyContent) {
		t.Fatalf("want ErrEmptyContent, got %v", err)
	}
}

func TestStorageKey_NormalizesExtension(t *testing.T) {
	p := newPipeline(&fakeRepoManager{}, nil, nil, &fakeInsightSummarizer{}, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	key, ext := p.storageKey("u1", "Recording.WAV")
	if ext != "wav" {
		t.Errorf("ext = %q", ext)
	}
	want := "u1/" + "1772366400000" + ".wav"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}

	_, ext = p.storageKey("u1", "blob")
	if ext != defaultAudioExt {
		t.Errorf("default ext = %q", ext)
	}
}
