package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/team-sapphire/vayazh/api"
	"github.com/team-sapphire/vayazh/internal/app"
	"github.com/team-sapphire/vayazh/internal/config"
	"github.com/team-sapphire/vayazh/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// knowledgeBuilder is the slice of App the background build needs.
type knowledgeBuilder interface {
	BuildKnowledge(ctx context.Context) error
}

// startKnowledgeBuild runs ingestion in the background. A failed build is
// fatal: the serve context is cancelled so the server shuts down instead
// of answering 503 forever, and the error is delivered on the returned
// channel.
func startKnowledgeBuild(ctx context.Context, b knowledgeBuilder, cancel context.CancelFunc, logger log.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		err := b.BuildKnowledge(ctx)
		if err != nil {
			logger.Error("building knowledge index failed, aborting", "error", err)
			cancel()
		}
		errCh <- err
	}()
	return errCh
}

// runServe initializes the application and starts the HTTP API server.
// The server listens immediately; the knowledge index builds in the
// background and /ready flips once ingestion completes. An ingestion
// failure aborts the process.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger := newLogger()
	slog.SetDefault(logger)
	logger.Info("starting vayazh", "version", AppVersion)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	buildErr := startKnowledgeBuild(ctx, a, cancel, logger)

	server := api.NewServer(a.Assistant, a.Farmers, a.DBPool, logger)
	if err := server.Run(ctx, cfg.Addr); err != nil {
		return err
	}

	// The server stopped cleanly; surface a build failure as the exit cause.
	select {
	case err := <-buildErr:
		if err != nil {
			return fmt.Errorf("building knowledge index: %w", err)
		}
	default:
	}
	return nil
}
