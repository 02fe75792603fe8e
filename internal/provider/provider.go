// Package provider defines the text-completion provider contract the session
// core consumes, plus a registry for the concrete bindings.
package provider

import (
	"context"
	"errors"
)

// DefaultMaxTokens is the token budget used when a request doesn't set one.
const DefaultMaxTokens = 150

// ErrModelLoading marks a cold-start failure: the remote host accepted the
// request but the model is still being loaded. Bindings wrap it so callers
// can distinguish "try again shortly" from hard failures.
var ErrModelLoading = errors.New("model is loading")

// Request is one continuation request: the document's plain text and a
// token budget.
type Request struct {
	Prompt    string
	MaxTokens int
}

// Provider is a remote text-completion service. Complete returns the
// generated continuation or an error whose message is suitable for direct
// display to the user.
type Provider interface {
	// Name returns the short identifier for this provider (e.g. "openai").
	Name() string

	// Complete sends the prompt and waits for the generated continuation.
	Complete(ctx context.Context, req Request) (string, error)
}
