package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/team-sapphire/vayazh/internal/log"
)

// PgIndex is the vector index backed by PostgreSQL + pgvector. The
// documents table is created by the embedded migrations; its seq column
// records insertion order for stable tie-breaking.
type PgIndex struct {
	pool     *pgxpool.Pool
	embedder Embedder
	logger   log.Logger
}

// NewPgIndex creates a pgvector-backed index on the given pool.
func NewPgIndex(pool *pgxpool.Pool, embedder Embedder, logger log.Logger) *PgIndex {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PgIndex{pool: pool, embedder: embedder, logger: logger}
}

// Insert embeds the chunk text and upserts it into the documents table.
func (p *PgIndex) Insert(ctx context.Context, chunk Chunk) error {
	vec, err := p.embedder.EmbedText(ctx, chunk.Text)
	if err != nil {
		return fmt.Errorf("embedding chunk %q: %w", chunk.ID, err)
	}

	embedding := pgvector.NewVector(vec)
	_, err = p.pool.Exec(ctx, `
		INSERT INTO documents (id, source, content, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET source = EXCLUDED.source,
		    content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding`,
		chunk.ID, chunk.Source, chunk.Text, embedding)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", chunk.ID, err)
	}

	p.logger.Debug("inserted chunk", "id", chunk.ID, "source", chunk.Source)
	return nil
}

// Search embeds the query and runs a cosine-distance search with the
// similarity cutoff applied in SQL. `<=>` is pgvector's cosine distance
// operator; similarity = 1 - distance.
func (p *PgIndex) Search(ctx context.Context, text string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	vec, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryEmbedding := pgvector.NewVector(vec)

	rows, err := p.pool.Query(ctx, `
		SELECT id, source, content, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1 ASC, seq ASC
		LIMIT $3`,
		queryEmbedding, cfg.minSimilarity, cfg.topK)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var similarity float64
		if err := rows.Scan(&r.Chunk.ID, &r.Chunk.Source, &r.Chunk.Text, &similarity); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Similarity = float32(similarity)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	return results, nil
}

// Len reports the number of stored chunks.
func (p *PgIndex) Len(ctx context.Context) (int, error) {
	var count int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}
