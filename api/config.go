package api

import (
	"time"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/stream"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// CORSOrigins is a comma separated list of allowed origins, or "*".
	CORSOrigins string

	// ChatModel answers chat, recap, hints and response checks.
	ChatModel string

	// ReasoningModel drafts step-by-step solutions.
	ReasoningModel string

	// MaxTokens caps every completion. Zero leaves it to the provider.
	MaxTokens int

	// CompletionTimeout bounds a single provider call. Zero means no limit.
	CompletionTimeout time.Duration

	// StreamMode selects native or split streaming for /chat and /recap.
	StreamMode stream.Mode

	// ChunkSize is the length of split chunks.
	ChunkSize int

	// ChunkDelay spaces split chunks.
	ChunkDelay time.Duration

	// WordDelay spaces the words of scripted tutor replies.
	WordDelay time.Duration

	// VerdictDelay is waited between the validate verdict and its message.
	VerdictDelay time.Duration

	KeepAlive   time.Duration
	IdleTimeout time.Duration

	// Buffer bounds the events queued ahead of a slow client.
	Buffer int
}

func (c Config) chunkPacing() stream.Pacing {
	size := c.ChunkSize
	if size <= 0 {
		size = 10
	}
	return stream.Pacing{Splitter: stream.FixedSize(size), Delay: c.ChunkDelay}
}

func (c Config) wordPacing() stream.Pacing {
	return stream.Pacing{Splitter: stream.Words(), Delay: c.WordDelay}
}

func (c Config) relayOptions() stream.RelayOptions {
	return stream.RelayOptions{
		KeepAlive:   c.KeepAlive,
		IdleTimeout: c.IdleTimeout,
	}
}
