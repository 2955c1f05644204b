// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
//
// The same embedder (same model) must be used for building an index and for
// querying it; similarity scores between vectors from different models are
// meaningless.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts a batch of texts into vector embeddings, one per
	// input, in input order. Used at index build time.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the underlying embedding model.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}
