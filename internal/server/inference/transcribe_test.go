package inference

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mweller/jotter/internal/common"
)

func TestTranscribeClient_Success(t *testing.T) {
	var gotBody []byte
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"text":"hello from the walk"}`))
	}))
	defer srv.Close()

	client := NewTranscribeClient(srv.URL, "secret", srv.Client())
	got, err := client.Transcribe(context.Background(), []byte("audio-bytes"), "audio/webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello from the walk" {
		t.Errorf("transcript = %q", got)
	}
	if string(gotBody) != "audio-bytes" {
		t.Errorf("body = %q", gotBody)
	}
	if gotContentType != "audio/webm" {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestTranscribeClient_EmptyTextIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	client := NewTranscribeClient(srv.URL, "secret", srv.Client())
	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio/webm")
	if !errors.Is(err, common.ErrTranscriptionFailed) {
		t.Fatalf("want ErrTranscriptionFailed, got %v", err)
	}
}

func TestTranscribeClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewTranscribeClient(srv.URL, "secret", srv.Client())
	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio/webm")
	if !errors.Is(err, common.ErrTranscriptionFailed) {
		t.Fatalf("want ErrTranscriptionFailed, got %v", err)
	}
}
