package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

// MaxBatchBytes caps the size of an import or compute request body.
const MaxBatchBytes = 10 << 20

// TransactionBatch is a decoded JSON array of transactions. Records that failed to decode
// are kept in Rejected with their position in the original array.
type TransactionBatch struct {
	Transactions []ledger.Transaction
	Rejected     []ledger.TransactionError

	// positions maps an index in Transactions to its index in the original array.
	positions []int
}

// ParseTransactionBatch reads a JSON array of transactions from the request body.
// A body that is not a JSON array is an error; individual malformed records are not.
func ParseTransactionBatch(r *http.Request) (TransactionBatch, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBatchBytes+1))
	if err != nil {
		return TransactionBatch{}, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(data) > MaxBatchBytes {
		return TransactionBatch{}, errors.New("request body too large")
	}
	return NewTransactionBatch(data)
}

// NewTransactionBatch decodes a JSON array of transactions.
func NewTransactionBatch(data []byte) (TransactionBatch, error) {
	txs, rejected, err := ledger.DecodeTransactions(data)
	if err != nil {
		return TransactionBatch{}, err
	}

	failed := make(map[int]bool, len(rejected))
	for _, r := range rejected {
		failed[r.Index] = true
	}

	positions := make([]int, 0, len(txs))
	for i := 0; len(positions) < len(txs); i++ {
		if !failed[i] {
			positions = append(positions, i)
		}
	}

	return TransactionBatch{
		Transactions: txs,
		Rejected:     rejected,
		positions:    positions,
	}, nil
}

// Size is the number of records in the original array.
func (b TransactionBatch) Size() int {
	return len(b.Transactions) + len(b.Rejected)
}

// Merge returns Rejected together with errs, whose indexes refer to Transactions, re-indexed
// against the original array and ordered by position.
func (b TransactionBatch) Merge(errs []ledger.TransactionError) []ledger.TransactionError {
	out := make([]ledger.TransactionError, 0, len(b.Rejected)+len(errs))
	out = append(out, b.Rejected...)
	for _, e := range errs {
		if e.Index >= 0 && e.Index < len(b.positions) {
			e.Index = b.positions[e.Index]
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(x, y ledger.TransactionError) int {
		return x.Index - y.Index
	})
	return out
}

// Remap converts an error whose index refers to Transactions into one indexed against
// the original array. Other errors are returned unchanged.
func (b TransactionBatch) Remap(err error) error {
	var txErr ledger.TransactionError
	if !errors.As(err, &txErr) {
		return err
	}
	if txErr.Index >= 0 && txErr.Index < len(b.positions) {
		txErr.Index = b.positions[txErr.Index]
	}
	return txErr
}

// Validate applies check to every decoded transaction and moves the failing ones to Rejected.
func (b TransactionBatch) Validate(check func(ledger.Transaction) error) TransactionBatch {
	out := TransactionBatch{
		Transactions: make([]ledger.Transaction, 0, len(b.Transactions)),
		Rejected:     append([]ledger.TransactionError(nil), b.Rejected...),
		positions:    make([]int, 0, len(b.positions)),
	}
	for i, tx := range b.Transactions {
		if err := check(tx); err != nil {
			out.Rejected = append(out.Rejected, ledger.TransactionError{Index: b.positions[i], TransactionID: tx.ID, Err: err})
			continue
		}
		out.Transactions = append(out.Transactions, tx)
		out.positions = append(out.positions, b.positions[i])
	}
	slices.SortStableFunc(out.Rejected, func(x, y ledger.TransactionError) int {
		return x.Index - y.Index
	})
	return out
}

// Before returns the decoded transactions that precede position index in the original array.
func (b TransactionBatch) Before(index int) []ledger.Transaction {
	n := 0
	for n < len(b.positions) && b.positions[n] < index {
		n++
	}
	return b.Transactions[:n]
}

// EarliestFailure returns the first failing record of a batch that has rejected records.
// collect must aggregate its argument in collect-errors mode; it is used to check the decoded
// records preceding the first rejection, so that an earlier ledger error takes precedence.
func (b TransactionBatch) EarliestFailure(collect func([]ledger.Transaction) ([]ledger.TransactionError, error)) error {
	if len(b.Rejected) == 0 {
		return nil
	}

	first := b.Rejected[0]
	prefix := b.Before(first.Index)
	if len(prefix) == 0 {
		return first
	}

	failed, err := collect(prefix)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return b.Remap(failed[0])
	}
	return first
}

// Position returns the index in the original array of Transactions[i].
func (b TransactionBatch) Position(i int) int {
	return b.positions[i]
}
