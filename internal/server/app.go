// Package server wires the application together: configuration, logging,
// database and migrations, object storage, inference clients, services, and
// the HTTP server, plus graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mweller/jotter/internal/logging"
	"github.com/mweller/jotter/internal/server/config"
	"github.com/mweller/jotter/internal/server/httpapi"
	"github.com/mweller/jotter/internal/server/inference"
	"github.com/mweller/jotter/internal/server/repositories/repomanager"
	"github.com/mweller/jotter/internal/server/services"
	"github.com/mweller/jotter/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

// NewApp builds the full dependency graph and runs database migrations.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}

	blobs := storage.NewS3Store(cfg)
	chat := inference.NewChatClient(cfg.ChatURL, cfg.InferenceToken, cfg.ChatModel, httpClient)
	transcriber := inference.NewTranscribeClient(cfg.TranscribeURL, cfg.InferenceToken, httpClient)
	summarizer := inference.NewSummarizer(chat, logger)

	userService := services.NewUserService(db, rm, cfg)
	entryService := services.NewEntryService(db, rm)
	insightService := services.NewInsightService(db, rm, summarizer,
		services.NewLogInvalidator(logger), logger)
	pipelineService := services.NewPipelineService(db, rm, blobs, transcriber,
		insightService, httpClient, logger)
	moodService := services.NewMoodService(db, rm)
	taxonomyService := services.NewTaxonomyService(db, rm)

	api := httpapi.NewServer(userService, entryService, pipelineService,
		insightService, moodService, taxonomyService, []byte(cfg.SecretKey), logger)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		handler: api.Routes(),
	}, nil
}

// Run serves HTTP until the context is cancelled or a termination signal
// arrives, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	return nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}
