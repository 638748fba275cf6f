// Package inference holds the HTTP adapters for the hosted AI services: an
// OpenAI-compatible chat-completions client used for summarization, a
// transcription client, and the parsers that turn free-form model output into
// a usable (title, summary) pair.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message is one turn of a chat-completions conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter produces a single model response for a conversation.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type chatRequest struct {
	Model             string    `json:"model"`
	Messages          []Message `json:"messages"`
	Temperature       float64   `json:"temperature"`
	TopP              float64   `json:"top_p"`
	MaxTokens         int       `json:"max_tokens"`
	RepetitionPenalty float64   `json:"repetition_penalty"`
	Stream            bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error json.RawMessage `json:"error"`
}

// ChatClient calls an OpenAI-compatible chat-completions endpoint. Low
// temperature and top-p bias the model toward deterministic, well-formatted
// output; max tokens caps response length.
type ChatClient struct {
	url        string
	token      string
	model      string
	httpClient *http.Client
}

// NewChatClient constructs a client for the given endpoint and model.
func NewChatClient(url, token, model string, httpClient *http.Client) *ChatClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ChatClient{url: url, token: token, model: model, httpClient: httpClient}
}

// Complete sends messages and returns the first choice's content.
func (c *ChatClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:             c.model,
		Messages:          messages,
		Temperature:       0.3,
		TopP:              0.9,
		MaxTokens:         200,
		RepetitionPenalty: 1.1,
		Stream:            false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && len(ae.Error) > 0 {
			return "", fmt.Errorf("chat api error: status %d: %s", resp.StatusCode, ae.Error)
		}
		return "", fmt.Errorf("chat api error: status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format: no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
