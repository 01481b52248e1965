package stream

import "errors"

var (
	// ErrClientGone is the cancellation cause when the SSE client disconnects.
	ErrClientGone = errors.New("client disconnected")

	// ErrProducerStalled is returned by Relay when the producer publishes
	// nothing for longer than the idle timeout.
	ErrProducerStalled = errors.New("producer stalled")
)
