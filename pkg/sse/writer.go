package sse

import (
	"fmt"
	"io"
)

// flusher is the subset of bufio.Writer the Writer needs to push frames to
// the client as they are produced.
type flusher interface {
	Flush() error
}

// Writer serializes events onto a downstream connection. Frames are written
// in call order and flushed immediately when the underlying writer supports
// it; no frame is buffered across calls, retried, or reordered.
type Writer struct {
	w io.Writer
}

// NewWriter creates an SSE writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send writes one event frame.
func (w *Writer) Send(event Event) error {
	if event.Type != "" {
		if _, err := fmt.Fprintf(w.w, "event: %s\n", event.Type); err != nil {
			return fmt.Errorf("writing event field: %w", err)
		}
	}

	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", event.Data); err != nil {
		return fmt.Errorf("writing data field: %w", err)
	}

	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing event: %w", err)
		}
	}

	return nil
}

// SendData writes one default-typed event carrying data.
func (w *Writer) SendData(data string) error {
	return w.Send(Event{Data: data})
}
