package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/api/handlers"
	"github.com/cloo-solutions/shopdesk/internal/database"
	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/jobs"
	"github.com/cloo-solutions/shopdesk/internal/server"
	"github.com/cloo-solutions/shopdesk/internal/storage"
	"github.com/cloo-solutions/shopdesk/internal/telemetry"
	"github.com/spf13/cobra"
)

// Version is reported by GET / and set at build time with -ldflags
var Version = "dev"

const watchDebounce = 500 * time.Millisecond

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the shopdesk chatbot API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", "migrations", "Directory holding the SQL migrations")
	cmd.Flags().Bool("warm", true, "Build every tenant's knowledge base index before accepting requests")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.SentryDSN != "" {
		// 10% sampling in production, everything elsewhere
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "shopdesk@" + Version,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
		} else {
			defer shutdownTelemetry()
		}
	}

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" && cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		dir, _ := cmd.Flags().GetString("migrations")
		if err := database.Migrate(cfg.DatabaseURL, dir, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.fsDocuments != nil {
		watcher, err := storage.NewWatcher(a.fsDocuments.Root(), a.generations, watchDebounce, logger)
		if err != nil {
			return fmt.Errorf("failed to watch documents: %w", err)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	if warm, _ := cmd.Flags().GetBool("warm"); warm {
		if err := a.indexes.Warm(ctx, domain.Tenants); err != nil {
			// Serving continues; the first question per tenant retries the build
			logger.Warn().Err(err).Msg("index warm-up failed")
		}
	}

	var warmer *jobs.Worker
	if cfg.IndexWarmInterval > 0 {
		warmer = jobs.NewWorker("index_warmer", jobs.NewIndexWarmer(a.indexes), cfg.IndexWarmInterval, logger)
		go warmer.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:          logger,
		Version:         Version,
		ChatHandler:     handlers.NewChatHandler(a.chat, logger),
		DocumentHandler: handlers.NewDocumentHandler(a.uploads),
		RecordHandler:   handlers.NewRecordHandler(a.records),
		FeedbackHandler: handlers.NewFeedbackHandler(a.feedback),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("version", Version).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")

	if warmer != nil {
		warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}
