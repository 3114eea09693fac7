package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// transactionJSON is the wire shape shared with every producer and consumer of transactions.
type transactionJSON struct {
	ID                  string               `json:"id"`
	Type                TransactionType      `json:"type"`
	Amount              json.Number          `json:"amount"`
	PaymentMethod       PaymentMethod        `json:"paymentMethod"`
	TransferDetails     *TransferDetails     `json:"transferDetails,omitempty"`
	LoanGivenDetails    *LoanGivenDetails    `json:"loanGivenDetails,omitempty"`
	LoanReceivedDetails *LoanReceivedDetails `json:"loanReceivedDetails,omitempty"`
	LoanPaymentDetails  *LoanPaymentDetails  `json:"loanPaymentDetails,omitempty"`
	Date                string               `json:"date,omitempty"`
	Description         string               `json:"description,omitempty"`
	Category            string               `json:"category,omitempty"`
}

// MarshalJSON encodes the transaction in its wire shape. Dates are written as YYYY-MM-DD.
func (tx Transaction) MarshalJSON() ([]byte, error) {
	w := transactionJSON{
		ID:                  tx.ID,
		Type:                tx.Type,
		Amount:              json.Number(fmt.Sprintf("%d", tx.Amount)),
		PaymentMethod:       tx.PaymentMethod,
		TransferDetails:     tx.Transfer,
		LoanGivenDetails:    tx.LoanGiven,
		LoanReceivedDetails: tx.LoanReceived,
		LoanPaymentDetails:  tx.LoanPayment,
		Description:         tx.Description,
		Category:            tx.Category,
	}
	if !tx.Date.IsZero() {
		w.Date = tx.Date.Format(dateLayout)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape. The amount must be a whole number of minor units;
// fractional, non-finite and out-of-range values yield an *AmountError. Unknown types and
// negative amounts are accepted here and rejected by Calculator.Compute.
func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("failed to decode transaction: %w", err)
	}

	amount, err := parseAmount(w.Amount)
	if err != nil {
		return &AmountError{TransactionID: w.ID, Reason: err.Error()}
	}

	var date time.Time
	if strings.TrimSpace(w.Date) != "" {
		date, err = parseDate(w.Date)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", w.ID, err)
		}
	}

	*tx = Transaction{
		ID:            w.ID,
		Type:          w.Type,
		Amount:        amount,
		PaymentMethod: w.PaymentMethod,
		Transfer:      w.TransferDetails,
		LoanGiven:     w.LoanGivenDetails,
		LoanReceived:  w.LoanReceivedDetails,
		LoanPayment:   w.LoanPaymentDetails,
		Date:          date,
		Description:   w.Description,
		Category:      w.Category,
	}
	return nil
}

func parseAmount(n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	if v, err := n.Int64(); err == nil {
		if v > MaxAmount || v < -MaxAmount {
			return 0, fmt.Errorf("amount %s out of range", s)
		}
		return v, nil
	}

	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("non-finite amount %s", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("fractional amount %s: amounts are whole minor units", s)
	}
	// From 2^53 on, a float64 may already hold a rounded neighbour of the written value.
	if math.Abs(f) > float64(MaxAmount) {
		return 0, fmt.Errorf("amount %s out of range", s)
	}
	return int64(f), nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

// DecodeTransactions decodes a JSON array of transactions one element at a time, so a
// malformed record does not prevent the rest from being read. Records that fail to decode
// are returned as TransactionErrors with their array index. The error return is reserved
// for input that is not a JSON array at all.
func DecodeTransactions(data []byte) ([]Transaction, []TransactionError, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode transaction batch: %w", err)
	}

	txs := make([]Transaction, 0, len(raw))
	var failed []TransactionError
	for i, r := range raw {
		var tx Transaction
		if err := json.Unmarshal(r, &tx); err != nil {
			failed = append(failed, TransactionError{Index: i, TransactionID: peekID(r), Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, failed, nil
}

func peekID(r json.RawMessage) string {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(r, &head); err != nil {
		return ""
	}
	return head.ID
}
