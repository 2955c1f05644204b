// Package vector provides interfaces and implementations for vector storage
// over corpus chunks.
package vector

import "context"

// Record is a stored chunk together with its embedding. The chunk text and
// citation metadata live alongside the vector so a query result can be turned
// into evidence without going back to the corpus files.
type Record struct {
	// ID is the deterministic chunk identifier.
	ID string

	// Embedding is the vector representation of the chunk text.
	Embedding []float32

	// Text is the verbatim chunk content.
	Text string

	// Source is the base file name of the originating document.
	Source string

	// Page is the 1-based page number the chunk was cut from.
	Page int

	// Seq is the position of the chunk within its document.
	Seq int
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Record

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of chunk embeddings.
type Driver interface {
	// Add stores records with their embeddings. If a record with the same ID
	// already exists, implementers should update the record.
	Add(ctx context.Context, records []Record) error

	// Query finds the topK records most similar to the given embedding,
	// ordered by descending similarity. Ranking must be deterministic for
	// identical inputs.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Count reports how many records the index holds. An existing but empty
	// index is what drives the caller back to a rebuild.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}

// IndexMeta describes the embedding space an index was built with.
type IndexMeta struct {
	// EmbeddingModel is the identifier of the model used at build time.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector dimensionality.
	Dimensions int `json:"dimensions"`
}

// MetaStore is implemented by drivers whose backend can persist index
// metadata. Callers validate the embedding model on load when the driver
// supports it; for backends that cannot store metadata the model match is an
// unchecked precondition.
type MetaStore interface {
	// WriteMeta persists the index metadata.
	WriteMeta(ctx context.Context, meta IndexMeta) error

	// ReadMeta loads the index metadata. Returns ErrNoMeta when the backend
	// holds no metadata yet.
	ReadMeta(ctx context.Context) (IndexMeta, error)
}
