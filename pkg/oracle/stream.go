package oracle

import (
	"context"
	"io"
	"strings"
)

// Frame is one delivery unit of a streamed answer. Exactly one of Word or
// Evidence is set.
type Frame struct {
	// Word is one whitespace-split token of the answer text.
	Word string

	// Evidence carries the structured evidence list, delivered as a single
	// unit in the final frame.
	Evidence []Evidence
}

// IsEvidence reports whether the frame is the trailing evidence frame.
func (f Frame) IsEvidence() bool {
	return f.Evidence != nil
}

// Stream is a lazy, finite, non-restartable sequence of frames for one
// answer: N word frames in left-to-right order, then at most one evidence
// frame. The transport consumes it at its own pace.
type Stream struct {
	words    []string
	evidence []Evidence
	pos      int
	sentEv   bool
}

// NewStream creates the frame sequence for an answer.
func NewStream(answer Answer) *Stream {
	return &Stream{
		words:    strings.Fields(answer.Text),
		evidence: answer.Evidence,
	}
}

// Next returns the next frame. It returns io.EOF when the sequence is
// exhausted and the context error when the consumer is cancelled, stopping
// production promptly.
func (s *Stream) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	if s.pos < len(s.words) {
		frame := Frame{Word: s.words[s.pos]}
		s.pos++
		return frame, nil
	}

	if len(s.evidence) > 0 && !s.sentEv {
		s.sentEv = true
		return Frame{Evidence: s.evidence}, nil
	}

	return Frame{}, io.EOF
}
