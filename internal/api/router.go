// Package api wires the HTTP handlers of the ledger API into a chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/config"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	ledgerService *service.LedgerService,
	snapshotService *service.SnapshotService,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	formatter := response.NewFormatter(cfg.Ledger.CurrencyExponent)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/transaction-type", func(r chi.Router) {
			typeHandler := handlers.NewTransactionTypeHandler(ledgerService)
			r.Get("/", typeHandler.TransactionTypes)
			r.Get("/{type}", typeHandler.TransactionType)
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(ledgerService, formatter)
			r.Get("/", transactionHandler.Transactions)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Post("/import", transactionHandler.ImportTransactions)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
				r.Get("/impact", transactionHandler.TransactionImpact)
			})
		})

		r.Route("/metrics", func(r chi.Router) {
			metricsHandler := handlers.NewMetricsHandler(ledgerService, snapshotService, formatter)
			r.Get("/", metricsHandler.Metrics)
			r.Post("/compute", metricsHandler.Compute)
			r.Get("/snapshot/latest", metricsHandler.LatestSnapshot)
		})

		r.Get("/summary", handlers.NewSummaryHandler(ledgerService, formatter).Summary)
	})

	return r
}
