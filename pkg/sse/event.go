// Package sse implements the small slice of Server-Sent Events that the
// tutoring service speaks: a Writer that frames JSON payloads as "data:"
// events plus keep-alive comments, and a Reader that parses those frames back
// into events for CLI clients and tests.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}
