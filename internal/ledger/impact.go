package ledger

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
)

// Calculator turns one transaction into one ImpactVector.
type Calculator struct {
	registry *Registry
}

// NewCalculator creates a Calculator that validates types against registry.
func NewCalculator(registry *Registry) *Calculator {
	return &Calculator{registry: registry}
}

// Registry returns the registry the calculator dispatches against.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

// Compute returns the effect of tx on cash flow, income, expense, assets, liabilities and
// account balances.
//
// Each type sets only the ledgers it affects:
//
//	type                   cashFlow  income  expense  assets  liabilities  accounts
//	income                 +amt      +amt    0        0       0            method +amt
//	expense                -amt      0       +amt     0       0            method -amt
//	transfer               0         0       0        0       0            from -amt, to +amt
//	loan_given             -amt      0       0        +amt    0            method -amt
//	loan_received          +amt      0       0        0       +amt         method +amt
//	loan_payment_received  +amt      0       0        -amt    0            method +amt
//	loan_payment_made      -amt      0       0        0       -amt         method -amt
//
// Errors:
//   - ErrInvalidTransactionKind (wrapping ErrUnknownTransactionType) for an unregistered type
//   - *AmountError for a negative amount or one above MaxAmount
//   - *PayloadError naming the offending field for an incomplete variant payload
//
// Account identifiers are trimmed of surrounding whitespace before they key AccountDeltas.
func (c *Calculator) Compute(tx Transaction) (ImpactVector, error) {
	desc, err := c.registry.Lookup(tx.Type)
	if err != nil {
		return ImpactVector{}, fmt.Errorf("%w: transaction %s: %w", apperrors.ErrInvalidTransactionKind, tx.ID, err)
	}

	if tx.Amount < 0 {
		return ImpactVector{}, &AmountError{TransactionID: tx.ID, Reason: fmt.Sprintf("negative amount %d", tx.Amount)}
	}
	if tx.Amount > MaxAmount {
		return ImpactVector{}, &AmountError{TransactionID: tx.ID, Reason: fmt.Sprintf("amount %d out of range", tx.Amount)}
	}

	if err := validatePayload(tx, desc); err != nil {
		return ImpactVector{}, err
	}

	amt := tx.Amount
	method := strings.TrimSpace(tx.PaymentMethod.ID)

	switch tx.Type {
	case Income:
		return ImpactVector{CashFlow: amt, Income: amt, AccountDeltas: deltas(method, amt)}, nil
	case Expense:
		return ImpactVector{CashFlow: -amt, Expense: amt, AccountDeltas: deltas(method, -amt)}, nil
	case Transfer:
		from, to := transferAccounts(tx.Transfer)
		return ImpactVector{AccountDeltas: transferDeltas(from, to, amt)}, nil
	case LoanGiven:
		return ImpactVector{CashFlow: -amt, Assets: amt, AccountDeltas: deltas(method, -amt)}, nil
	case LoanReceived:
		return ImpactVector{CashFlow: amt, Liabilities: amt, AccountDeltas: deltas(method, amt)}, nil
	case LoanPaymentReceived:
		return ImpactVector{CashFlow: amt, Assets: -amt, AccountDeltas: deltas(method, amt)}, nil
	case LoanPaymentMade:
		return ImpactVector{CashFlow: -amt, Liabilities: -amt, AccountDeltas: deltas(method, -amt)}, nil
	}

	// Registered but not dispatched: the registry and this switch are out of step.
	return ImpactVector{}, fmt.Errorf("%w: transaction %s: no impact rule for %q: %w",
		apperrors.ErrInvalidTransactionKind, tx.ID, string(tx.Type), apperrors.ErrUnknownTransactionType)
}

func validatePayload(tx Transaction, desc TypeDescriptor) error {
	missing := func(field string) error {
		return &PayloadError{TransactionID: tx.ID, Field: field}
	}

	if desc.RequiresTwoAccounts {
		if tx.Transfer == nil {
			return missing("transferDetails")
		}
		from, to := transferAccounts(tx.Transfer)
		if from == "" {
			return missing("transferDetails.fromMethod")
		}
		if to == "" {
			return missing("transferDetails.toMethod")
		}
		if from == to {
			return &PayloadError{TransactionID: tx.ID, Field: "transferDetails.toMethod", Reason: "must differ from fromMethod"}
		}
		return nil
	}

	if strings.TrimSpace(tx.PaymentMethod.ID) == "" {
		return missing("paymentMethod")
	}

	if !desc.RequiresCounterpartyRef {
		return nil
	}

	switch tx.Type {
	case LoanGiven:
		if tx.LoanGiven == nil {
			return missing("loanGivenDetails")
		}
		if strings.TrimSpace(tx.LoanGiven.Borrower) == "" {
			return missing("loanGivenDetails.borrower")
		}
	case LoanReceived:
		if tx.LoanReceived == nil {
			return missing("loanReceivedDetails")
		}
		if strings.TrimSpace(tx.LoanReceived.Lender) == "" {
			return missing("loanReceivedDetails.lender")
		}
	case LoanPaymentReceived, LoanPaymentMade:
		if tx.LoanPayment == nil {
			return missing("loanPaymentDetails")
		}
		if strings.TrimSpace(tx.LoanPayment.OriginalLoanID) == "" {
			return missing("originalLoanId")
		}
	}
	return nil
}

func transferAccounts(d *TransferDetails) (from, to string) {
	return strings.TrimSpace(d.FromMethod), strings.TrimSpace(d.ToMethod)
}

func deltas(account string, delta int64) map[string]int64 {
	m := make(map[string]int64, 1)
	if delta != 0 {
		m[account] = delta
	}
	return m
}

func transferDeltas(from, to string, amt int64) map[string]int64 {
	m := make(map[string]int64, 2)
	if amt != 0 {
		m[from] = -amt
		m[to] = amt
	}
	return m
}
