// Package openai binds the provider contract to the OpenAI chat-completions
// API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/inkwell-dev/inkwell/internal/prompts"
	"github.com/inkwell-dev/inkwell/internal/provider"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Client talks to the OpenAI chat-completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	system  string
	stop    []string
	http    *http.Client
}

// New creates a Client from resolved settings. A missing API key is a
// construction-time error, not a request-time one.
func New(s provider.Settings) (provider.Provider, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is not configured (set OPENAI_API_KEY)")
	}
	model := s.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	sys, err := prompts.Load("system.md")
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	systemPrompt, err := sys.Execute(nil)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	return &Client{
		apiKey:  s.APIKey,
		model:   model,
		baseURL: baseURL,
		system:  systemPrompt,
		stop:    sys.Meta.Stop,
		http:    &http.Client{},
	}, nil
}

func (c *Client) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
	Stop      []string      `json:"stop,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends the document text as the user message under the standing
// system prompt and returns the generated continuation.
func (c *Client) Complete(ctx context.Context, req provider.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = provider.DefaultMaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.system},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: maxTokens,
		Stop:      c.stop,
	})
	if err != nil {
		return "", fmt.Errorf("openai: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Debug("sending completion request", "provider", "openai", "model", c.model, "maxTokens", maxTokens)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("openai: decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("openai: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("openai: request returned status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
