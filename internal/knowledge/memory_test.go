package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns fixed vectors per text, so similarity scores are
// fully deterministic without a live model.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	// Unknown texts get a default direction distinct from the fixtures.
	return []float32{0, 0, 1}, nil
}

func newTestIndex(t *testing.T, e Embedder) *MemoryIndex {
	t.Helper()
	idx, err := NewMemoryIndex(EmbeddingFunc(e))
	require.NoError(t, err)
	return idx
}

func TestMemoryIndexEmptySearch(t *testing.T) {
	idx := newTestIndex(t, &stubEmbedder{})

	results, err := idx.Search(context.Background(), "anything", WithMinSimilarity(0.6))
	require.NoError(t, err, "empty index must not error")
	assert.Empty(t, results)

	n, err := idx.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryIndexRoundTrip(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{
		"wheat needs nitrogen": {1, 0, 0},
		"rice paddies flood":   {0, 1, 0},
	}}
	idx := newTestIndex(t, e)
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c1", Text: "wheat needs nitrogen", Source: "agronomy"}))
	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c2", Text: "rice paddies flood", Source: "agronomy"}))

	results, err := idx.Search(ctx, "wheat needs nitrogen")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "c1", results[0].Chunk.ID, "exact text must rank first")
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
	assert.Equal(t, "agronomy", results[0].Chunk.Source)
}

func TestMemoryIndexSimilarityThreshold(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{
		"wheat needs nitrogen": {1, 0, 0},
		"rice paddies flood":   {0, 1, 0},
	}}
	idx := newTestIndex(t, e)
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c1", Text: "wheat needs nitrogen"}))
	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c2", Text: "rice paddies flood"}))

	results, err := idx.Search(ctx, "wheat needs nitrogen", WithMinSimilarity(0.6))
	require.NoError(t, err)

	require.Len(t, results, 1, "orthogonal chunk must be filtered out")
	assert.Equal(t, "c1", results[0].Chunk.ID)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Similarity, float32(0.6))
	}
}

func TestMemoryIndexTopK(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0.9, 0.1, 0},
		"c": {0.8, 0.2, 0},
	}}
	idx := newTestIndex(t, e)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, idx.Insert(ctx, Chunk{ID: text, Text: text}))
	}

	results, err := idx.Search(ctx, "a", WithTopK(2))
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestMemoryIndexStableOrdering(t *testing.T) {
	// Two chunks with identical embeddings tie on similarity; insertion
	// order must break the tie the same way on every query.
	e := &stubEmbedder{vectors: map[string][]float32{
		"first copy":  {1, 0, 0},
		"second copy": {1, 0, 0},
		"query":       {1, 0, 0},
	}}
	idx := newTestIndex(t, e)
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c1", Text: "first copy"}))
	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c2", Text: "second copy"}))

	first, err := idx.Search(ctx, "query")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "c1", first[0].Chunk.ID)
	assert.Equal(t, "c2", first[1].Chunk.ID)

	for i := 0; i < 5; i++ {
		again, err := idx.Search(ctx, "query")
		require.NoError(t, err)
		assert.Equal(t, first, again, "repeated identical query changed ordering")
	}
}

func TestMemoryIndexNoDuplicateIdentities(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{"text": {1, 0, 0}}}
	idx := newTestIndex(t, e)
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c1", Text: "text"}))
	require.NoError(t, idx.Insert(ctx, Chunk{ID: "c1", Text: "text"}))

	results, err := idx.Search(ctx, "text")
	require.NoError(t, err)
	assert.Len(t, results, 1, "re-inserting an ID must not duplicate it")
}

func TestMemoryIndexRejectsEmptyChunk(t *testing.T) {
	idx := newTestIndex(t, &stubEmbedder{})
	err := idx.Insert(context.Background(), Chunk{ID: "c1", Text: ""})
	assert.Error(t, err)
}

func TestMemoryIndexEmbedderFailure(t *testing.T) {
	e := &stubEmbedder{err: errors.New("model offline")}
	idx := newTestIndex(t, e)

	err := idx.Insert(context.Background(), Chunk{ID: "c1", Text: "text"})
	assert.Error(t, err)
}
