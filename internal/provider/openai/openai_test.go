package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-dev/inkwell/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) provider.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(provider.Settings{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(provider.Settings{})
	assert.ErrorContains(t, err, "API key")
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "and so it went."}},
			},
		})
	})

	out, err := p.Complete(context.Background(), provider.Request{Prompt: "Once upon a time", MaxTokens: 80})
	require.NoError(t, err)
	assert.Equal(t, "and so it went.", out)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Once upon a time", got.Messages[1].Content)
	assert.Equal(t, 80, got.MaxTokens)
}

func TestCompleteDefaultsMaxTokens(t *testing.T) {
	var got chatRequest
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "x"}},
			},
		})
	})

	_, err := p.Complete(context.Background(), provider.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, provider.DefaultMaxTokens, got.MaxTokens)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	})

	_, err := p.Complete(context.Background(), provider.Request{Prompt: "hi"})
	assert.ErrorContains(t, err, "Incorrect API key provided")
}

func TestCompleteEmptyChoices(t *testing.T) {
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := p.Complete(context.Background(), provider.Request{Prompt: "hi"})
	assert.ErrorContains(t, err, "no choices")
}
