// Package app provides application initialization and dependency wiring.
//
// App is the container that connects configuration, the database pool,
// Genkit, the knowledge index, and the assistant. Construction is
// synchronous; the knowledge index is built afterwards via
// BuildKnowledge so the HTTP server can come up immediately and report
// readiness once ingestion completes.
package app

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/team-sapphire/vayazh/internal/acquire"
	"github.com/team-sapphire/vayazh/internal/assistant"
	"github.com/team-sapphire/vayazh/internal/config"
	"github.com/team-sapphire/vayazh/internal/farmer"
	"github.com/team-sapphire/vayazh/internal/knowledge"
	"github.com/team-sapphire/vayazh/internal/log"
	"github.com/team-sapphire/vayazh/internal/weather"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Index     knowledge.Index
	Farmers   *farmer.Store
	Weather   *weather.Client
	Assistant *assistant.Assistant

	fetcher *acquire.Fetcher
}

// BuildKnowledge acquires the configured corpus, chunks and embeds it
// into the index, and marks the assistant ready. Meant to run in a
// goroutine after Setup while the HTTP server is already listening.
func (a *App) BuildKnowledge(ctx context.Context) error {
	docs := a.fetcher.Sources(ctx, a.Config.DocumentURLs, a.Config.DocumentPDFs)

	result, err := knowledge.BuildIndex(ctx, a.Index, docs, knowledge.IngestOptions{
		ChunkSize:    a.Config.ChunkSize,
		ChunkOverlap: a.Config.ChunkOverlap,
		Logger:       a.Logger,
	})
	if err != nil {
		return err
	}

	a.Assistant.MarkReady()
	a.Logger.Info("assistant ready",
		"documents", result.DocumentsIndexed,
		"chunks", result.ChunksInserted)
	return nil
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database pool closed")
	}

	return nil
}
