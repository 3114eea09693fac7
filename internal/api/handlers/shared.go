// Package handlers contains the HTTP handlers of the ledger API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/logger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/validation"
)

// maxBodyBytes caps single-record request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into a value of type T.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return v, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// errorStatuses maps domain errors to HTTP statuses. The first match wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{apperrors.ErrUnknownTransactionType, http.StatusBadRequest},
	{apperrors.ErrInvalidTransactionKind, http.StatusBadRequest},
	{apperrors.ErrInvalidTransactionPayload, http.StatusBadRequest},
	{apperrors.ErrInvalidAmount, http.StatusBadRequest},
	{apperrors.ErrInvalidAggregationMode, http.StatusBadRequest},
	{apperrors.ErrEmptyBatch, http.StatusBadRequest},
	{apperrors.ErrInvalidDateRange, http.StatusBadRequest},
	{apperrors.ErrInvalidUUID, http.StatusBadRequest},
	{apperrors.ErrInvalidRequestBody, http.StatusBadRequest},
	{apperrors.ErrTransactionNotFound, http.StatusNotFound},
	{apperrors.ErrSnapshotNotFound, http.StatusNotFound},
	{apperrors.ErrDuplicateEntry, http.StatusConflict},
}

// respondServiceError writes err with the status its kind maps to. Unmapped errors are
// logged and answered with 500 and the fallback message.
// A failing transaction in a batch is reported with its index and ID as details.
func respondServiceError(w http.ResponseWriter, r *http.Request, fallback error, err error) {
	var details interface{} = err.Error()
	var txErr ledger.TransactionError
	if errors.As(err, &txErr) {
		details = txErr
	}

	var valErr *validation.Error
	if errors.As(err, &valErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", valErr.Fields)
		return
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			response.RespondError(w, e.status, e.err.Error(), details)
			return
		}
	}

	log := logger.FromContext(r.Context())
	log.Error().Err(err).Msg(fallback.Error())
	response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequestBody, err)
}

// parseMode reads the mode query parameter. An absent mode selects fail-fast.
func parseMode(r *http.Request) (ledger.Mode, error) {
	return ledger.ParseMode(r.URL.Query().Get("mode"))
}
