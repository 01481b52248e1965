package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const defaultBuffer = 64

// Emit publishes one event. It returns the cancellation cause once the
// session is cancelled; producers stop publishing when it returns an error.
type Emit func(Event) error

// ProduceFunc generates the events of one reply. It runs on the session's
// producer goroutine and must return once ctx is done.
type ProduceFunc func(ctx context.Context, emit Emit) error

// Session is the per-request state shared by a producer and its consumer.
// A Session is started once and never reused.
type Session struct {
	id     string
	events chan Event
	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}
	err    error
}

// NewSession creates a session whose producer is cancelled when parent is
// done. buffer bounds the number of events queued ahead of the consumer.
func NewSession(parent context.Context, buffer int) *Session {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	ctx, cancel := context.WithCancelCause(parent)
	return &Session{
		id:     uuid.NewString(),
		events: make(chan Event, buffer),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID identifies the session in logs and events.
func (s *Session) ID() string {
	return s.id
}

// Events returns the channel the producer publishes to. It is closed after
// the last event.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Cancel asks the producer to stop. The first cause wins.
func (s *Session) Cancel(cause error) {
	s.cancel(cause)
}

// Done is closed once the producer has finished and the event channel is
// closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the producer's terminal error. It is only meaningful after
// Done is closed; nil means the reply completed.
func (s *Session) Err() error {
	return s.err
}

// Start runs produce on a new goroutine. Whatever happens inside produce
// (error, panic, cancellation) the event channel is closed exactly once. A
// failure that is not a cancellation is reported to the client as a single
// "Error: ..." chunk before the close.
func (s *Session) Start(produce ProduceFunc) {
	go func() {
		var err error
		defer func() {
			s.err = err
			s.cancel(nil)
			close(s.events)
			close(s.done)
		}()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("producer panic: %v", r)
				s.report(err)
			}
		}()

		err = produce(s.ctx, s.emit)
		if err != nil && !s.cancelled(err) {
			s.report(err)
		}
	}()
}

func (s *Session) emit(ev Event) error {
	if s.ctx.Err() != nil {
		return context.Cause(s.ctx)
	}

	select {
	case s.events <- ev:
		return nil
	case <-s.ctx.Done():
		return context.Cause(s.ctx)
	}
}

func (s *Session) report(err error) {
	_ = s.emit(Chunk("Error: " + err.Error()))
}

// cancelled reports whether err is the result of the session being cancelled
// rather than a producer failure.
func (s *Session) cancelled(err error) bool {
	if s.ctx.Err() == nil {
		return false
	}
	cause := context.Cause(s.ctx)
	return errors.Is(err, cause) || errors.Is(err, context.Canceled)
}
