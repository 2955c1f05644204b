package oracle

import (
	"context"
	"fmt"

	"github.com/papercomputeco/verbatim/pkg/embeddings"
	"github.com/papercomputeco/verbatim/pkg/vector"
)

// Retriever embeds a question and looks up its nearest chunks. The question
// must be embedded with the same model the index was built with; the engine
// validates this on load where the backend stores metadata.
type Retriever struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	topK     int
}

// NewRetriever creates a retriever with a fixed retrieval depth.
func NewRetriever(embedder embeddings.Embedder, driver vector.Driver, topK int) *Retriever {
	return &Retriever{
		embedder: embedder,
		driver:   driver,
		topK:     topK,
	}
}

// Retrieve returns the top-K chunks most similar to the question, ordered by
// descending similarity.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vector.QueryResult, error) {
	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := r.driver.Query(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	return results, nil
}
