package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/inkwell-dev/inkwell/internal/history"
	"github.com/inkwell-dev/inkwell/internal/provider"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Uptime   string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "running",
		Provider: s.opts.Provider.Name(),
		Uptime:   time.Since(s.start).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ContinueRequest is the JSON body for POST /continue.
type ContinueRequest struct {
	Text      string `json:"text"`
	MaxTokens int    `json:"maxTokens"`
}

// ContinueResponse is the JSON response for POST /continue.
type ContinueResponse struct {
	ContinuedText string `json:"continuedText,omitempty"`
	Error         string `json:"error,omitempty"`
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req ContinueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ContinueResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, ContinueResponse{Error: "text is required"})
		return
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.opts.MaxTokens
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	started := time.Now()
	out, err := s.opts.Provider.Complete(ctx, provider.Request{
		Prompt:    req.Text,
		MaxTokens: maxTokens,
	})
	elapsed := time.Since(started)

	if err != nil {
		s.record(history.Record{
			Provider:    s.opts.Provider.Name(),
			PromptChars: len(req.Text),
			MaxTokens:   maxTokens,
			Status:      history.StatusFailed,
			Reason:      err.Error(),
			Duration:    elapsed,
		})
		slog.Warn("continuation failed", "error", err, "duration", elapsed)
		writeJSON(w, http.StatusInternalServerError, ContinueResponse{Error: err.Error()})
		return
	}

	s.record(history.Record{
		Provider:    s.opts.Provider.Name(),
		PromptChars: len(req.Text),
		MaxTokens:   maxTokens,
		Status:      history.StatusOK,
		OutputChars: len(out),
		Duration:    elapsed,
	})
	slog.Debug("continuation served", "promptChars", len(req.Text), "outputChars", len(out), "duration", elapsed)
	writeJSON(w, http.StatusOK, ContinueResponse{ContinuedText: out})
}

func (s *Server) record(rec history.Record) {
	if s.opts.History == nil {
		return
	}
	if err := s.opts.History.Append(rec); err != nil {
		slog.Warn("failed to record continuation", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
