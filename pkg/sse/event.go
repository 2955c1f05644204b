// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// writer for delivering answers word-by-word to a downstream client.
//
// This package intentionally does NOT provide SSE reader or client
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single SSE event to be written to the wire, delimited
// by a blank line in the downstream byte stream.
type Event struct {
	// Type is the SSE event type for the "event:" field.
	// An empty string means the default "message" type per the SSE spec,
	// and the field is omitted from the wire.
	Type string

	// Data is the contents of the "data:" line. Payloads never span
	// multiple data lines in this protocol.
	Data string
}
