package knowledge

import (
	"context"
	"errors"
)

// VectorDimension is the embedding dimensionality the documents table schema
// expects. gemini-embedding-001 is truncated to this size via
// OutputDimensionality (Matryoshka Representation Learning).
const VectorDimension = 768

// ErrEmbedderUnavailable indicates the embedding model could not be reached.
// Fatal during ingestion; on the query path callers degrade to answering
// without retrieved context.
var ErrEmbedderUnavailable = errors.New("embedding model unavailable")

// Chunk is a bounded substring of a source document, the unit of embedding
// and retrieval. Immutable once created.
type Chunk struct {
	ID     string // derived from source + position, stable across rebuilds
	Text   string
	Source string // identifier of the originating document
}

// Result is a single search result with its cosine similarity score.
type Result struct {
	Chunk      Chunk
	Similarity float32 // 0..1
}

// Index stores embedded chunks and answers nearest-neighbor queries.
//
// Search results are ordered by similarity (descending) with ties broken by
// insertion order, never contain duplicates, and exclude anything below the
// minimum similarity option. An empty result is valid and signals "no
// relevant context", not an error.
type Index interface {
	// Insert adds a chunk, embedding its text.
	Insert(ctx context.Context, chunk Chunk) error

	// Search embeds text and returns up to top-k sufficiently similar chunks.
	Search(ctx context.Context, text string, opts ...SearchOption) ([]Result, error)

	// Len reports how many chunks the index holds.
	Len(ctx context.Context) (int, error)
}

// SearchOption configures search behavior using the functional options
// pattern (context.WithTimeout, grpc.Dial style).
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK          int
	minSimilarity float32
}

// WithTopK sets the maximum number of results to return. Default is 4.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithMinSimilarity excludes results scoring below the given cosine
// similarity. Default is 0 (no cutoff).
func WithMinSimilarity(min float32) SearchOption {
	return func(c *searchConfig) {
		c.minSimilarity = min
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: 4}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
