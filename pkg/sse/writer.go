package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Writer frames payloads as SSE events. Each call writes one complete event
// and flushes it, so a client sees it as soon as the call returns.
//
// A write error means the client is gone; callers treat it as a disconnect.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w. The writer is typically one end of an io.Pipe backing a
// streamed HTTP response body.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Data encodes payload as JSON and writes it as a single "data:" event.
func (w *Writer) Data(payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", b); err != nil {
		return err
	}
	return w.w.Flush()
}

// Comment writes an SSE comment line. Clients ignore comments, which makes
// them suitable as keep-alive pings.
func (w *Writer) Comment(text string) error {
	if _, err := fmt.Fprintf(w.w, ": %s\n\n", text); err != nil {
		return err
	}
	return w.w.Flush()
}
