package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mweller/jotter/internal/common"
)

// Transcriber converts an audio payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// TranscribeClient posts raw audio bytes to a Whisper-style inference
// endpoint and reads the transcript out of the JSON response.
type TranscribeClient struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewTranscribeClient constructs a client for the given endpoint.
func NewTranscribeClient(url, token string, httpClient *http.Client) *TranscribeClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TranscribeClient{url: url, token: token, httpClient: httpClient}
}

// Transcribe sends audio and returns the transcript text. An empty or missing
// text field counts as failure.
func (c *TranscribeClient) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", common.ErrTranscriptionFailed, resp.StatusCode, body)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	if result.Text == "" {
		return "", fmt.Errorf("%w: no text returned", common.ErrTranscriptionFailed)
	}
	return result.Text, nil
}
