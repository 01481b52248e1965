// Package stream bridges a blocking completion call into an incremental,
// cancellable stream of events relayed to an SSE client.
//
// A Session couples one producer goroutine with one consumer. The producer
// publishes events in order into a bounded channel and closes it exactly once
// when it finishes, fails or is cancelled; the close is the end-of-stream
// marker. Relay drains the channel into an sse.Writer and cancels the session
// when the client goes away.
package stream

// Kind identifies what an Event carries.
type Kind int

const (
	// KindChunk is a fragment of the reply text.
	KindChunk Kind = iota

	// KindVerdict is a correctness judgement sent ahead of the reply text.
	KindVerdict
)

// Event is one item published by a producer.
type Event struct {
	Kind    Kind
	Text    string
	Correct bool
}

// Chunk returns a text chunk event.
func Chunk(text string) Event {
	return Event{Kind: KindChunk, Text: text}
}

// Verdict returns a verdict event.
func Verdict(correct bool) Event {
	return Event{Kind: KindVerdict, Correct: correct}
}

type chunkPayload struct {
	Chunk string `json:"chunk"`
}

type verdictPayload struct {
	IsCorrect bool `json:"isCorrect"`
}

// Payload returns the JSON body of the event on the wire.
func (e Event) Payload() any {
	if e.Kind == KindVerdict {
		return verdictPayload{IsCorrect: e.Correct}
	}
	return chunkPayload{Chunk: e.Text}
}
