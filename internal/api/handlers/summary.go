package handlers

import (
	"net/http"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
)

// SummaryHandler handles the per-type transaction summary.
type SummaryHandler struct {
	ledgerService *service.LedgerService
	formatter     response.Formatter
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(ledgerService *service.LedgerService, formatter response.Formatter) *SummaryHandler {
	return &SummaryHandler{
		ledgerService: ledgerService,
		formatter:     formatter,
	}
}

// Summary handles GET requests grouping the stored transactions matching the filter by type.
// Totals are raw face-value sums, not financial totals.
//
// Endpoint: GET /api/summary
// Query Parameters: type, start_date, end_date as for GET /api/transaction
// Response: 200 OK with an object keyed by transaction type
// Error: 400 Bad Request if a filter parameter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r, h.ledgerService)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}

	summary, err := h.ledgerService.Summary(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.formatter.NewSummaryResponse(summary))
}
