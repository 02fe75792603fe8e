// Package huggingface binds the provider contract to the Hugging Face
// inference API. Unlike a commercial hosted model, inference hosts spin
// models up on demand, so the binding has to classify the cold-start
// response distinctly.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell-dev/inkwell/internal/prompts"
	"github.com/inkwell-dev/inkwell/internal/provider"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultModel   = "mistralai/Mistral-7B-Instruct-v0.3"
)

// Client talks to a Hugging Face inference endpoint for one model.
type Client struct {
	token   string
	model   string
	baseURL string
	prompt  *prompts.Prompt
	http    *http.Client
}

// New creates a Client from resolved settings. A missing token is a
// construction-time error.
func New(s provider.Settings) (provider.Provider, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("huggingface: API token is not configured (set HF_API_TOKEN)")
	}
	model := s.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	p, err := prompts.Load("completion.md")
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}

	return &Client{
		token:   s.APIKey,
		model:   model,
		baseURL: baseURL,
		prompt:  p,
		http:    &http.Client{},
	}, nil
}

func (c *Client) Name() string { return "huggingface" }

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int      `json:"max_new_tokens"`
	ReturnFullText bool     `json:"return_full_text"`
	Stop           []string `json:"stop,omitempty"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Complete renders the completion template around the document text and
// sends it to the inference host. On a cold start (503 while the model
// loads) it retries once with x-wait-for-model, which blocks server-side
// until the model is up or the context expires; if that also fails, the
// error wraps provider.ErrModelLoading.
func (c *Client) Complete(ctx context.Context, req provider.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = provider.DefaultMaxTokens
	}

	input, err := c.prompt.Execute(map[string]string{"Text": req.Prompt})
	if err != nil {
		return "", fmt.Errorf("huggingface: %w", err)
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: input,
		Parameters: inferenceParameters{
			MaxNewTokens:   maxTokens,
			ReturnFullText: false,
			Stop:           c.prompt.Meta.Stop,
		},
	})
	if err != nil {
		return "", fmt.Errorf("huggingface: encoding request: %w", err)
	}

	slog.Debug("sending completion request", "provider", "huggingface", "model", c.model, "maxTokens", maxTokens)

	out, err := c.do(ctx, body, false)
	if errors.Is(err, provider.ErrModelLoading) && ctx.Err() == nil {
		slog.Debug("model cold start, retrying with x-wait-for-model", "model", c.model)
		if out, retryErr := c.do(ctx, body, true); retryErr == nil {
			return out, nil
		}
	}
	return out, err
}

func (c *Client) do(ctx context.Context, body []byte, wait bool) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("huggingface: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	if wait {
		httpReq.Header.Set("x-wait-for-model", "true")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decoding below.
	case http.StatusServiceUnavailable:
		var apiErr inferenceError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.EstimatedTime > 0 {
			return "", fmt.Errorf("huggingface: %w (model %s, ~%.0fs until ready)",
				provider.ErrModelLoading, c.model, apiErr.EstimatedTime)
		}
		return "", fmt.Errorf("huggingface: %w (model %s)", provider.ErrModelLoading, c.model)
	default:
		var apiErr inferenceError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("huggingface: %s", apiErr.Error)
		}
		return "", fmt.Errorf("huggingface: request returned status %d", resp.StatusCode)
	}

	var results []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("huggingface: decoding response: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("huggingface: response contained no generations")
	}
	return strings.TrimRight(results[0].GeneratedText, "\n"), nil
}
