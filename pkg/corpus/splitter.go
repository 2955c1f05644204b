package corpus

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the ordered list of split boundaries, highest priority
// first. Splits prefer semantic boundaries (section headings, paragraphs,
// sentences) over whitespace, and fall back to a raw character cut when no
// separator lands inside the size budget.
var DefaultSeparators = []string{"\nAbstract", "\n\n", "\n", ".", "!", "?", ",", " "}

// Policy configures chunk granularity. Sizes are in characters (runes).
type Policy struct {
	// ChunkSize is the maximum chunk length.
	ChunkSize int

	// Overlap is the number of trailing characters of a chunk repeated at the
	// start of the next chunk.
	Overlap int

	// Separators overrides DefaultSeparators when non-nil.
	Separators []string
}

// PrecisionPolicy returns the chunking policy tuned for short factual
// lookups: small chunks keep retrieved context tight around a single fact.
func PrecisionPolicy() Policy {
	return Policy{ChunkSize: 500, Overlap: 100}
}

// CoveragePolicy returns the chunking policy tuned for broad retrieval:
// large chunks carry surrounding context at the cost of a bigger prompt.
func CoveragePolicy() Policy {
	return Policy{ChunkSize: 2000, Overlap: 400}
}

// Splitter cuts page text into overlapping chunks at the best available
// separator boundary.
type Splitter struct {
	policy Policy
	seps   []string
}

// NewSplitter validates the policy and returns a splitter.
func NewSplitter(p Policy) (*Splitter, error) {
	if p.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", p.ChunkSize)
	}
	if p.Overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", p.Overlap)
	}
	if p.Overlap >= p.ChunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d", p.Overlap, p.ChunkSize)
	}

	seps := p.Separators
	if seps == nil {
		seps = DefaultSeparators
	}

	return &Splitter{policy: p, seps: seps}, nil
}

// Split cuts text into chunks of at most ChunkSize characters. Each chunk
// after the first starts exactly Overlap characters before the end of its
// predecessor, so dropping the first Overlap characters of every chunk but
// the first reconstructs the input with no loss at the boundaries.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.policy.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for {
		end := start + s.policy.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		cut := start + s.cutAt(string(runes[start:end]))
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.policy.Overlap
	}
}

// cutAt returns the cut position (in runes, relative to the window start) for
// a full-size window. It scans the separators in priority order and takes the
// last occurrence of the first separator that lands beyond the overlap, so
// the next chunk always makes progress. When no separator fits it falls back
// to a raw cut at the window end.
func (s *Splitter) cutAt(window string) int {
	for _, sep := range s.seps {
		if sep == "" {
			continue
		}

		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}

		// Keep the separator with the chunk it terminates.
		rel := utf8.RuneCountInString(window[:idx]) + utf8.RuneCountInString(sep)
		if rel > s.policy.Overlap {
			return rel
		}
	}

	return s.policy.ChunkSize
}
