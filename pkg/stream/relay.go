package stream

import (
	"context"
	"time"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/sse"
)

const (
	defaultDrainTimeout = 5 * time.Second
	keepAliveComment    = "ping"
)

// RelayOptions configures Relay. Zero KeepAlive or IdleTimeout disables the
// corresponding timer.
type RelayOptions struct {
	// KeepAlive is the interval between ": ping" comments while idle.
	KeepAlive time.Duration

	// IdleTimeout bounds the wait between two producer events.
	IdleTimeout time.Duration

	// DrainTimeout bounds the wait for the producer after a disconnect.
	DrainTimeout time.Duration
}

// Result summarises a relayed reply.
type Result struct {
	// Events is the number of events written to the client.
	Events int

	// Bytes is the total length of the chunk text written.
	Bytes int
}

// Relay forwards the session's events to w until the producer closes the
// stream. It returns nil once every event has been written.
//
// If a write fails the client is gone: the session is cancelled with
// ErrClientGone, remaining events are discarded and Relay returns
// ErrClientGone after the producer finishes (or DrainTimeout passes). If the
// producer goes quiet for IdleTimeout, or ctx is done, the session is
// cancelled and Relay returns ErrProducerStalled or the context's error.
func Relay(ctx context.Context, w *sse.Writer, s *Session, opts RelayOptions) (Result, error) {
	var res Result

	var keepAlive <-chan time.Time
	if opts.KeepAlive > 0 {
		t := time.NewTicker(opts.KeepAlive)
		defer t.Stop()
		keepAlive = t.C
	}

	var idle *time.Timer
	var idleC <-chan time.Time
	if opts.IdleTimeout > 0 {
		idle = time.NewTimer(opts.IdleTimeout)
		defer idle.Stop()
		idleC = idle.C
	}

	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return res, nil
			}
			if idle != nil {
				idle.Reset(opts.IdleTimeout)
			}
			if err := w.Data(ev.Payload()); err != nil {
				return res, disconnect(s, opts.DrainTimeout)
			}
			res.Events++
			res.Bytes += len(ev.Text)

		case <-keepAlive:
			if err := w.Comment(keepAliveComment); err != nil {
				return res, disconnect(s, opts.DrainTimeout)
			}

		case <-idleC:
			s.Cancel(ErrProducerStalled)
			return res, ErrProducerStalled

		case <-ctx.Done():
			s.Cancel(context.Cause(ctx))
			return res, ctx.Err()
		}
	}
}

func disconnect(s *Session, timeout time.Duration) error {
	s.Cancel(ErrClientGone)
	Drain(s, timeout)
	return ErrClientGone
}

// Drain discards events until the producer closes the stream or timeout
// passes. It reports whether the producer finished.
func Drain(s *Session, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return true
			}
		case <-deadline.C:
			return false
		}
	}
}
