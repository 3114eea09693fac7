package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
)

// TransactionTypeHandler serves the transaction type registry so clients can decide which
// inputs a type needs.
type TransactionTypeHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionTypeHandler creates a new TransactionTypeHandler.
func NewTransactionTypeHandler(ledgerService *service.LedgerService) *TransactionTypeHandler {
	return &TransactionTypeHandler{ledgerService: ledgerService}
}

// TransactionTypes handles GET requests listing every registered transaction type in registration order.
//
// Endpoint: GET /api/transaction-type
// Response: 200 OK with array of TypeDescriptor
func (h *TransactionTypeHandler) TransactionTypes(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.ledgerService.TransactionTypes())
}

// TransactionType handles GET requests for a single transaction type.
//
// Endpoint: GET /api/transaction-type/{type}
// Response: 200 OK with TypeDescriptor
// Error: 404 Not Found if the type is not registered
func (h *TransactionTypeHandler) TransactionType(w http.ResponseWriter, r *http.Request) {
	t := ledger.TransactionType(strings.ToLower(chi.URLParam(r, "type")))

	descriptor, err := h.ledgerService.TransactionType(t)
	if err != nil {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrUnknownTransactionType.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, descriptor)
}
