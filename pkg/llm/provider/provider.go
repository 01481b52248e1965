// Package provider defines the completion provider abstraction shared by the
// streaming and request/response routes.
package provider

import (
	"context"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
)

// Provider produces a whole completion for a request. The call blocks until
// the provider has answered or ctx is done.
type Provider interface {
	// Name returns the canonical provider name (e.g. "openai", "echo").
	Name() string

	// Complete returns the full completion text.
	Complete(ctx context.Context, req *llm.ChatRequest) (string, error)
}

// Streamer is implemented by providers that can deliver a completion
// incrementally. onDelta is called once per provider delta, in order; a
// non-nil return stops the stream and is returned from Stream.
type Streamer interface {
	Provider

	Stream(ctx context.Context, req *llm.ChatRequest, onDelta func(delta string) error) error
}
