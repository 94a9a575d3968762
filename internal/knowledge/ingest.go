package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/team-sapphire/vayazh/internal/log"
)

// SourceDocument is one raw document handed to the ingestion pipeline.
type SourceDocument struct {
	ID   string // URL, file path, or other source identifier
	Text string // extracted plain text; may be empty on acquisition failure
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	DocumentsIndexed int
	DocumentsSkipped int
	ChunksInserted   int
	Duration         time.Duration
}

// IngestOptions configures the ingestion pipeline.
type IngestOptions struct {
	ChunkSize    int // <=0 means default 500
	ChunkOverlap int // <0 means default 100; 0 disables overlap
	Logger       log.Logger
}

// BuildIndex drives the chunker and the index over a batch of source
// documents. It runs exactly once per process lifetime, before any query
// is served.
//
// Documents without text are skipped, not fatal: the index exists for
// best-effort context enrichment, not as a source of truth. An embedding
// failure aborts the build, since a partially embedded index would serve
// skewed retrieval results.
func BuildIndex(ctx context.Context, idx Index, docs []SourceDocument, opts IngestOptions) (*IngestResult, error) {
	size := opts.ChunkSize
	if size <= 0 {
		size = 500
	}
	overlap := opts.ChunkOverlap
	if overlap < 0 {
		overlap = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	start := time.Now()
	result := &IngestResult{}

	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			logger.Warn("skipping document without text", "source", doc.ID)
			result.DocumentsSkipped++
			continue
		}

		pieces := SplitText(doc.Text, size, overlap)
		for i, piece := range pieces {
			chunk := Chunk{
				ID:     chunkID(doc.ID, i),
				Text:   piece,
				Source: doc.ID,
			}
			if err := idx.Insert(ctx, chunk); err != nil {
				return nil, fmt.Errorf("indexing %q: %w", doc.ID, err)
			}
			result.ChunksInserted++
		}

		logger.Debug("indexed document", "source", doc.ID, "chunks", len(pieces))
		result.DocumentsIndexed++
	}

	result.Duration = time.Since(start)
	logger.Info("knowledge base built",
		"documents", result.DocumentsIndexed,
		"skipped", result.DocumentsSkipped,
		"chunks", result.ChunksInserted,
		"duration", result.Duration.String())

	return result, nil
}

// chunkID derives a stable document ID from the source identifier and the
// chunk position, so rebuilding the index from the same corpus produces
// the same IDs.
func chunkID(source string, position int) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%s#%d", source, position))
	return "chunk_" + hex.EncodeToString(hash[:16])
}
