package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
)

// PayloadError reports a variant sub-object or field that is missing, or present but unusable
// when Reason is set. It matches apperrors.ErrInvalidTransactionPayload with errors.Is.
type PayloadError struct {
	TransactionID string
	Field         string
	Reason        string
}

func (e *PayloadError) Error() string {
	problem := "missing " + e.Field
	if e.Reason != "" {
		problem = e.Field + " " + e.Reason
	}
	if e.TransactionID == "" {
		return fmt.Sprintf("%s: %s", apperrors.ErrInvalidTransactionPayload, problem)
	}
	return fmt.Sprintf("%s: transaction %s: %s", apperrors.ErrInvalidTransactionPayload, e.TransactionID, problem)
}

func (e *PayloadError) Is(target error) bool {
	return target == apperrors.ErrInvalidTransactionPayload
}

// AmountError reports an amount that is negative, non-finite or not a whole number of minor units.
// It matches apperrors.ErrInvalidAmount with errors.Is.
type AmountError struct {
	TransactionID string
	Reason        string
}

func (e *AmountError) Error() string {
	if e.TransactionID == "" {
		return fmt.Sprintf("%s: %s", apperrors.ErrInvalidAmount, e.Reason)
	}
	return fmt.Sprintf("%s: transaction %s: %s", apperrors.ErrInvalidAmount, e.TransactionID, e.Reason)
}

func (e *AmountError) Is(target error) bool {
	return target == apperrors.ErrInvalidAmount
}

// TransactionError pairs a skipped transaction with the reason it was skipped.
// Index is the position of the transaction in the input sequence.
type TransactionError struct {
	Index         int    `json:"index"`
	TransactionID string `json:"transactionId"`
	Err           error  `json:"-"`
}

func (e TransactionError) Error() string {
	return fmt.Sprintf("transaction %s (index %d): %v", e.TransactionID, e.Index, e.Err)
}

func (e TransactionError) Unwrap() error {
	return e.Err
}

// MarshalJSON writes the underlying error message alongside the position and ID.
func (e TransactionError) MarshalJSON() ([]byte, error) {
	var msg string
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Index         int    `json:"index"`
		TransactionID string `json:"transactionId"`
		Error         string `json:"error"`
	}{e.Index, e.TransactionID, msg})
}
