// Package corpus provides loading and chunking of source documents.
//
// A corpus is a fixed set of plain-text source files. Each file is split into
// pages on form-feed boundaries (files without form feeds are a single page),
// and each page is split into overlapping chunks by a recursive character
// splitter. Chunks are the unit of embedding and retrieval; every chunk
// carries its source file name and page number so answers can be cited back
// to the exact location that supports them.
package corpus

import (
	"fmt"

	"github.com/google/uuid"
)

// Document is one loaded source file, broken into pages. Documents exist only
// during ingestion; after chunking they are discarded.
type Document struct {
	// Path is the path the document was loaded from.
	Path string

	// Source is the base file name used in citations.
	Source string

	// Pages holds the page texts in order. Page numbers are 1-based.
	Pages []Page
}

// Page is one page of a document.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous slice of a document page. Chunks are immutable once
// created and are persisted in the vector index together with their
// embedding.
type Chunk struct {
	// ID is a deterministic identifier derived from (source, page, seq) so
	// rebuilding an index upserts rather than duplicates.
	ID string

	// Source is the base file name of the originating document.
	Source string

	// Page is the 1-based page number the chunk was cut from.
	Page int

	// Seq is the position of the chunk within its document.
	Seq int

	// Text is the chunk content.
	Text string
}

// ChunkID derives the deterministic chunk identifier for a (source, page,
// seq) triple.
func ChunkID(source string, page, seq int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "verbatim:%s:%d:%d", source, page, seq)).String()
}
