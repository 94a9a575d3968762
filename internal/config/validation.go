package config

import (
	"fmt"
	"os"
)

// Validate checks configuration values and fails fast on the first problem.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name must not be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidModelName)
	}

	switch c.IndexBackend {
	case IndexBackendMemory, IndexBackendPgvector:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)",
			ErrInvalidIndexBackend, c.IndexBackend, IndexBackendMemory, IndexBackendPgvector)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d",
			ErrInvalidChunking, c.ChunkOverlap)
	}

	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: must be in [0, 1], got %v", ErrInvalidThreshold, c.SimilarityThreshold)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("%w: retrieval_top_k must be positive, got %d", ErrInvalidThreshold, c.RetrievalTopK)
	}

	if c.PostgresHost == "" || c.PostgresDBName == "" || c.PostgresUser == "" {
		return fmt.Errorf("%w: host, user and db name are required", ErrInvalidPostgres)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidPostgres, c.PostgresPort)
	}

	return nil
}

// ValidateServe performs the additional checks needed to run the server.
// GEMINI_API_KEY is consumed by the Genkit googlegenai plugin directly.
func (c *Config) ValidateServe() error {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY for the googleai provider", ErrMissingAPIKey)
	}
	return nil
}
