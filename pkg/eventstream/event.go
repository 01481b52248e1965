// Package eventstream defines the analytics events the tutor emits and the
// publisher interface that ships them to an event stream backend.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTimerEnded is emitted after a subproblem timer is ended.
	EventTypeTimerEnded = "scribe.timer.ended"

	// EventTypeReplyStreamed is emitted after a streamed reply finishes,
	// whatever the outcome.
	EventTypeReplyStreamed = "scribe.reply.streamed"

	sourceService = "scribe"
)

// Reply outcomes.
const (
	OutcomeCompleted  = "completed"
	OutcomeClientGone = "client_gone"
	OutcomeStalled    = "stalled"
	OutcomeFailed     = "failed"
)

// Event is a transport-neutral event payload. Exactly one of Timer and Reply
// is set, matching EventType.
type Event struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Timer         *TimerEnded    `json:"timer,omitempty"`
	Reply         *ReplyStreamed `json:"reply,omitempty"`
}

// EventSource identifies where the event originated.
type EventSource struct {
	Service  string `json:"service"`
	Route    string `json:"route"`
	Provider string `json:"provider,omitempty"`
}

// TimerEnded is the payload of EventTypeTimerEnded.
type TimerEnded struct {
	SessionID       string    `json:"session_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// ReplyStreamed is the payload of EventTypeReplyStreamed.
type ReplyStreamed struct {
	StreamID   string `json:"stream_id"`
	Action     string `json:"action,omitempty"`
	Model      string `json:"model,omitempty"`
	Events     int    `json:"events"`
	Bytes      int    `json:"bytes"`
	DurationMs int64  `json:"duration_ms"`
	Outcome    string `json:"outcome"`
}

// Key returns the partition key of the event: the session or stream it
// belongs to.
func (e *Event) Key() string {
	switch {
	case e.Timer != nil:
		return e.Timer.SessionID
	case e.Reply != nil:
		return e.Reply.StreamID
	default:
		return e.EventID
	}
}

func newEvent(eventType, route, provider string) *Event {
	return &Event{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Service:  sourceService,
			Route:    route,
			Provider: provider,
		},
	}
}

// NewTimerEnded builds an EventTypeTimerEnded event.
func NewTimerEnded(route string, t TimerEnded) *Event {
	e := newEvent(EventTypeTimerEnded, route, "")
	e.Timer = &t
	return e
}

// NewReplyStreamed builds an EventTypeReplyStreamed event.
func NewReplyStreamed(route, provider string, r ReplyStreamed) *Event {
	e := newEvent(EventTypeReplyStreamed, route, provider)
	e.Reply = &r
	return e
}
