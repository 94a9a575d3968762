package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// MemoryIndex is the in-process vector index backed by a chromem-go
// collection. It is built once at startup and read-only afterwards.
type MemoryIndex struct {
	coll *chromem.Collection

	mu  sync.Mutex
	seq int // insertion counter, used for stable tie-breaking
}

// NewMemoryIndex creates an empty in-memory index using the given
// embedding function for both documents and queries.
func NewMemoryIndex(embed chromem.EmbeddingFunc) (*MemoryIndex, error) {
	db := chromem.NewDB()
	coll, err := db.CreateCollection("documents", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return &MemoryIndex{coll: coll}, nil
}

// Insert adds a chunk to the collection. Re-inserting an ID replaces the
// previous document, so the index never holds duplicate chunk identities.
func (m *MemoryIndex) Insert(ctx context.Context, chunk Chunk) error {
	if chunk.Text == "" {
		return errors.New("chunk text must not be empty")
	}

	m.mu.Lock()
	seq := m.seq
	m.seq++
	m.mu.Unlock()

	doc := chromem.Document{
		ID:      chunk.ID,
		Content: chunk.Text,
		Metadata: map[string]string{
			"source": chunk.Source,
			"seq":    strconv.Itoa(seq),
		},
	}
	if err := m.coll.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("adding document %q: %w", chunk.ID, err)
	}
	return nil
}

// Search returns up to top-k chunks with similarity at or above the
// configured minimum. An empty index yields an empty result, not an error.
func (m *MemoryIndex) Search(ctx context.Context, text string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	count := m.coll.Count()
	if count == 0 {
		return nil, nil
	}

	// chromem rejects nResults larger than the collection
	n := cfg.topK
	if n > count {
		n = count
	}

	found, err := m.coll.Query(ctx, text, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	type scored struct {
		res Result
		seq int
	}
	results := make([]scored, 0, len(found))
	for _, f := range found {
		if f.Similarity < cfg.minSimilarity {
			continue
		}
		seq, _ := strconv.Atoi(f.Metadata["seq"])
		results = append(results, scored{
			res: Result{
				Chunk: Chunk{
					ID:     f.ID,
					Text:   f.Content,
					Source: f.Metadata["source"],
				},
				Similarity: f.Similarity,
			},
			seq: seq,
		})
	}

	// chromem orders by similarity but makes no promise about ties;
	// re-sort so repeated identical queries return identical orderings.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].res.Similarity != results[j].res.Similarity {
			return results[i].res.Similarity > results[j].res.Similarity
		}
		return results[i].seq < results[j].seq
	})

	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r.res
	}
	return out, nil
}

// Len reports the number of stored chunks.
func (m *MemoryIndex) Len(_ context.Context) (int, error) {
	return m.coll.Count(), nil
}
