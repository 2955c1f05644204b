package corpus

import "errors"

// SourceNotFoundError is returned when an explicitly named document path does
// not resolve to an existing file. Explicit ingestion is all-or-nothing, so a
// single missing path fails the whole call.
type SourceNotFoundError struct {
	Path string
}

func (e SourceNotFoundError) Error() string {
	if e.Path == "" {
		return "source document not found"
	}

	return "source document not found: " + e.Path
}

var (
	// ErrNoDocuments is returned by bulk ingestion when no document in the
	// corpus could be loaded. Building an index over zero documents is fatal.
	ErrNoDocuments = errors.New("no documents loaded from corpus")

	// ErrEmptyDocument is returned when a document loads but contains no text.
	ErrEmptyDocument = errors.New("document contains no text")
)
