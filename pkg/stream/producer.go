package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider"
)

// Mode selects how a reply is produced.
type Mode string

const (
	// ModeAuto streams natively when the provider can, and splits otherwise.
	ModeAuto Mode = "auto"

	// ModeNative is the same as ModeAuto; providers that cannot stream are
	// still split.
	ModeNative Mode = "native"

	// ModeSplit always fetches the whole reply first and splits it.
	ModeSplit Mode = "split"
)

// Pacing describes how a split reply is chunked and spaced.
type Pacing struct {
	Splitter Splitter
	Delay    time.Duration
}

// Native publishes each provider delta as one chunk.
func Native(p provider.Streamer, req *llm.ChatRequest) ProduceFunc {
	return func(ctx context.Context, emit Emit) error {
		return p.Stream(ctx, req, func(delta string) error {
			return emit(Chunk(delta))
		})
	}
}

// Split fetches the whole reply and publishes it in paced pieces.
func Split(p provider.Provider, req *llm.ChatRequest, pacing Pacing) ProduceFunc {
	return func(ctx context.Context, emit Emit) error {
		text, err := p.Complete(ctx, req)
		if err != nil {
			return fmt.Errorf("%s completion: %w", p.Name(), err)
		}
		return Text(text, pacing)(ctx, emit)
	}
}

// Auto picks Native or Split for the provider and mode.
func Auto(p provider.Provider, req *llm.ChatRequest, mode Mode, pacing Pacing) ProduceFunc {
	if s, ok := p.(provider.Streamer); ok && mode != ModeSplit {
		return Native(s, req)
	}
	return Split(p, req, pacing)
}

// Text publishes a fixed text in paced pieces.
func Text(text string, pacing Pacing) ProduceFunc {
	splitter := pacing.Splitter
	if splitter == nil {
		splitter = Words()
	}

	return func(ctx context.Context, emit Emit) error {
		for i, piece := range splitter(text) {
			if i > 0 {
				if err := Sleep(ctx, pacing.Delay); err != nil {
					return err
				}
			}
			if err := emit(Chunk(piece)); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithTimeout bounds the running time of produce.
func WithTimeout(d time.Duration, produce ProduceFunc) ProduceFunc {
	if d <= 0 {
		return produce
	}

	return func(ctx context.Context, emit Emit) error {
		ctx, cancel := context.WithTimeoutCause(ctx, d, fmt.Errorf("completion timed out after %s", d))
		defer cancel()

		err := produce(ctx, emit)
		if err != nil && ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return err
	}
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
