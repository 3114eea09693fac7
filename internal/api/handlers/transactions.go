package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ledgerService.
type TransactionHandler struct {
	ledgerService *service.LedgerService
	formatter     response.Formatter
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(ledgerService *service.LedgerService, formatter response.Formatter) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		formatter:     formatter,
	}
}

// ImportResponse reports the outcome of a bulk import. Failed lists every rejected record
// with its position in the submitted array.
type ImportResponse struct {
	Imported int                       `json:"imported"`
	Failed   []ledger.TransactionError `json:"failed"`
}

// Transactions handles GET requests to list stored transactions.
// Ordered by date, then insertion time.
//
// Endpoint: GET /api/transaction
// Query Parameters:
//   - type: comma-separated transaction types
//   - start_date, end_date: inclusive bounds, YYYY-MM-DD or RFC3339
//
// Response: 200 OK with array of TransactionResponse
// Error: 400 Bad Request if a filter parameter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r, h.ledgerService)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}

	transactions, err := h.ledgerService.ListTransactions(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.formatter.NewTransactionListResponse(transactions))
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with TransactionResponse
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.ledgerService.GetTransaction(r.Context(), transactionID)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.formatter.NewStoredTransactionResponse(transaction))
}

// CreateTransaction handles POST requests to create a new transaction.
// The transaction must pass request validation and the impact calculator before it is stored.
//
// Endpoint: POST /api/transaction
// Request Body: Transaction (id optional, type, amount, paymentMethod, variant details)
// Response: 201 Created with TransactionResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if a transaction with the same ID exists
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[ledger.Transaction](r)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToCreateTransaction, invalidBody(err))
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToCreateTransaction, err)
		return
	}

	transaction, err := h.ledgerService.CreateTransaction(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToCreateTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, h.formatter.NewTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE requests to remove a transaction.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content on successful deletion
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	if err := h.ledgerService.DeleteTransaction(r.Context(), transactionID); err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToDeleteTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// TransactionImpact handles GET requests for the impact vector of a stored transaction.
//
// Endpoint: GET /api/transaction/{uuid}/impact
// Response: 200 OK with ImpactResponse
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if the impact cannot be computed
func (h *TransactionHandler) TransactionImpact(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	impact, err := h.ledgerService.TransactionImpact(r.Context(), transactionID)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToComputeImpact, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.formatter.NewImpactResponse(impact))
}

// ImportTransactions handles POST requests storing a JSON array of transactions in one
// database transaction.
//
// In fail-fast mode (the default) the earliest invalid record aborts the import and nothing is stored.
// In collect-errors mode invalid records are skipped and the rest are stored.
//
// Endpoint: POST /api/transaction/import?mode=collect-errors
// Request Body: array of Transaction
// Response: 200 OK with ImportResponse
// Error: 400 Bad Request if the body is not an array, the batch is empty or a record is invalid in fail-fast mode
// Error: 409 Conflict if a record ID already exists
// Error: 500 Internal Server Error if the import fails
func (h *TransactionHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToImportTransactions, err)
		return
	}

	batch, err := request.ParseTransactionBatch(r)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToImportTransactions, invalidBody(err))
		return
	}
	if batch.Size() == 0 {
		respondServiceError(w, r, apperrors.ErrFailedToImportTransactions, apperrors.ErrEmptyBatch)
		return
	}

	batch = batch.Validate(validation.ValidateCreateTransaction)

	if mode == ledger.ModeFailFast && len(batch.Rejected) > 0 {
		respondServiceError(w, r, apperrors.ErrFailedToImportTransactions, batch.EarliestFailure(func(prefix []ledger.Transaction) ([]ledger.TransactionError, error) {
			return h.ledgerService.CheckImport(r.Context(), prefix)
		}))
		return
	}

	result := model.ImportResult{Failed: []ledger.TransactionError{}}
	if len(batch.Transactions) > 0 {
		result, err = h.ledgerService.ImportTransactions(r.Context(), batch.Transactions, mode)
		if err != nil {
			respondServiceError(w, r, apperrors.ErrFailedToImportTransactions, batch.Remap(err))
			return
		}
	}

	response.RespondJSON(w, http.StatusOK, ImportResponse{
		Imported: result.Imported,
		Failed:   batch.Merge(result.Failed),
	})
}

// earliestFailure reports the first failing record of a fail-fast batch that has rejected records.
func earliestFailure(ctx context.Context, ledgerService *service.LedgerService, batch request.TransactionBatch) error {
	return batch.EarliestFailure(func(prefix []ledger.Transaction) ([]ledger.TransactionError, error) {
		result, err := ledgerService.ComputeBatch(ctx, prefix, ledger.ModeCollectErrors)
		return result.Errors, err
	})
}

// parseFilter reads the type, start_date and end_date query parameters.
func parseFilter(r *http.Request, ledgerService *service.LedgerService) (model.TransactionFilter, error) {
	q := r.URL.Query()
	return request.ParseTransactionFilter(ledgerService.Registry(), q.Get("type"), q.Get("start_date"), q.Get("end_date"))
}
