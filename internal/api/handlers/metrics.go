package handlers

import (
	"net/http"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
)

// MetricsHandler handles HTTP requests for aggregate metrics and the recorded snapshots.
type MetricsHandler struct {
	ledgerService   *service.LedgerService
	snapshotService *service.SnapshotService
	formatter       response.Formatter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(
	ledgerService *service.LedgerService,
	snapshotService *service.SnapshotService,
	formatter response.Formatter,
) *MetricsHandler {
	return &MetricsHandler{
		ledgerService:   ledgerService,
		snapshotService: snapshotService,
		formatter:       formatter,
	}
}

// Metrics handles GET requests aggregating the stored transactions matching the filter.
//
// Endpoint: GET /api/metrics
// Query Parameters:
//   - mode: fail-fast (default) or collect-errors
//   - type, start_date, end_date: as for GET /api/transaction
//
// Response: 200 OK with MetricsResponse
// Error: 400 Bad Request if a parameter is invalid or a stored transaction is rejected in fail-fast mode
// Error: 500 Internal Server Error if retrieval fails
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, err)
		return
	}

	filter, err := parseFilter(r, h.ledgerService)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, err)
		return
	}

	result, err := h.ledgerService.Metrics(r.Context(), filter, mode)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.formatter.NewMetricsResponse(result))
}

// Compute handles POST requests aggregating a submitted batch without storing it.
// Records that fail to decode count as rejected records: they abort the request in
// fail-fast mode and are reported in errors in collect-errors mode.
//
// Endpoint: POST /api/metrics/compute?mode=collect-errors
// Request Body: array of Transaction
// Response: 200 OK with MetricsResponse
// Error: 400 Bad Request if the body is not an array, the batch is empty or a record is invalid in fail-fast mode
func (h *MetricsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, err)
		return
	}

	batch, err := request.ParseTransactionBatch(r)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, invalidBody(err))
		return
	}
	if batch.Size() == 0 {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, apperrors.ErrEmptyBatch)
		return
	}

	if mode == ledger.ModeFailFast && len(batch.Rejected) > 0 {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, earliestFailure(r.Context(), h.ledgerService, batch))
		return
	}

	result, err := h.ledgerService.ComputeBatch(r.Context(), batch.Transactions, mode)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeMetrics, err)
		return
	}
	result.Errors = batch.Merge(result.Errors)

	response.RespondJSON(w, http.StatusOK, h.formatter.NewMetricsResponse(result))
}

// LatestSnapshot handles GET requests for the most recent scheduled metrics snapshot.
//
// Endpoint: GET /api/metrics/snapshot/latest
// Response: 200 OK with SnapshotResponse
// Error: 404 Not Found if no snapshot has been recorded yet
// Error: 500 Internal Server Error if retrieval fails
func (h *MetricsHandler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotService.LatestSnapshot(r.Context())
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveSnapshot, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.formatter.NewSnapshotResponse(snapshot))
}
