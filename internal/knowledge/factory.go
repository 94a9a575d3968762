package knowledge

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/team-sapphire/vayazh/internal/config"
	"github.com/team-sapphire/vayazh/internal/log"
)

// NewIndex creates the vector index backend selected in the configuration.
// The pool may be nil for the memory backend.
func NewIndex(cfg *config.Config, pool *pgxpool.Pool, embedder Embedder, logger log.Logger) (Index, error) {
	switch cfg.IndexBackend {
	case config.IndexBackendMemory:
		return NewMemoryIndex(EmbeddingFunc(embedder))
	case config.IndexBackendPgvector:
		if pool == nil {
			return nil, fmt.Errorf("pgvector backend requires a database pool")
		}
		return NewPgIndex(pool, embedder, logger), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.IndexBackend)
	}
}
