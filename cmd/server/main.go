package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/config"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/database"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/logger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.Log.Level)
	zlog.Logger = log

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schemaVersion, err := database.Migrate(ctx, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Int64("version", schemaVersion).Msg("database schema up to date")

	codec, err := repository.NewDetailsCodec(cfg.Ledger.EncryptionKeys)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ledger encryption key")
	}

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db, codec)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Ledger engine: registry, calculator, aggregator
	aggregator := ledger.NewAggregator(ledger.NewCalculator(ledger.NewRegistry()))

	// Create services
	ledgerService := service.NewLedgerService(transactionRepo, aggregator, cfg.Ledger.AggregateShards, log)
	snapshotService, err := service.NewSnapshotService(ledgerService, snapshotRepo, cfg.Snapshot.Schedule, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create snapshot service")
	}
	systemService := service.NewSystemService(db, map[string]bool{
		"encryption_at_rest":   codec.Encrypted(),
		"metrics_snapshots":    true,
		"parallel_aggregation": cfg.Ledger.AggregateShards > 1,
	})

	if err := snapshotService.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start snapshot job")
	}

	// Create router
	router := api.NewRouter(systemService, ledgerService, snapshotService, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("version", version.Version).
			Time("next_snapshot", snapshotService.NextRun()).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a server failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed")
	}

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	select {
	case <-snapshotService.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("snapshot job still running at shutdown")
	}

	log.Info().Msg("server exited")
}
