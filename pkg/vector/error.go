package vector

import "errors"

var (
	// ErrNotFound is returned when a record is not found in the vector store.
	ErrNotFound = errors.New("record not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrEmptyIndex is returned when an index location exists but holds no
	// records. Distinct from "not found": the caller should fall back to a
	// fresh build rather than treat the index as usable.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrNoMeta is returned by MetaStore implementations when no index
	// metadata has been written yet.
	ErrNoMeta = errors.New("index metadata not found")
)
