// Package echo provides a deterministic completion provider that repeats the
// prompt back. It lets the whole tutoring flow run without a model server.
package echo

import (
	"context"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
)

// Prefix is prepended to the echoed prompt.
const Prefix = "Received input: "

type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return "echo"
}

// Complete returns Prefix followed by the latest user message.
func (p *Provider) Complete(ctx context.Context, req *llm.ChatRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Prefix + req.LastUserText(), nil
}
