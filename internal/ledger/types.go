// Package ledger classifies financial transactions and computes their effect on cash flow,
// the income statement, the balance sheet and individual account balances.
//
// Everything in this package is a pure function of its inputs. A Registry is built once,
// handed to a Calculator, and the Calculator to an Aggregator; none of them hold mutable
// state, so they can be shared freely between goroutines.
//
// All amounts are integers in minor currency units (e.g. cents).
package ledger

import "time"

// TransactionType is the closed set of transaction kinds the ledger understands.
type TransactionType string

const (
	Income              TransactionType = "income"
	Expense             TransactionType = "expense"
	Transfer            TransactionType = "transfer"
	LoanGiven           TransactionType = "loan_given"
	LoanReceived        TransactionType = "loan_received"
	LoanPaymentReceived TransactionType = "loan_payment_received"
	LoanPaymentMade     TransactionType = "loan_payment_made"
)

// MaxAmount bounds the magnitude of a single amount. It is the largest integer a float64
// holds exactly, so amounts survive any JSON producer unchanged.
const MaxAmount int64 = 1<<53 - 1

// PaymentMethod identifies the account (wallet, bank channel, cash on hand) a transaction
// settles against.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TransferDetails describes a same-owner movement between two accounts.
type TransferDetails struct {
	FromMethod string `json:"fromMethod"`
	ToMethod   string `json:"toMethod"`
}

// LoanGivenDetails describes money lent to a borrower.
type LoanGivenDetails struct {
	Borrower string `json:"borrower"`
	Terms    string `json:"terms,omitempty"`
}

// LoanReceivedDetails describes money borrowed from a lender.
type LoanReceivedDetails struct {
	Lender string `json:"lender"`
	Terms  string `json:"terms,omitempty"`
}

// LoanPaymentDetails links a repayment to the loan it reduces.
// PaymentAmount is informational; the impact is always computed from Transaction.Amount.
type LoanPaymentDetails struct {
	OriginalLoanID string `json:"originalLoanId"`
	PaymentAmount  int64  `json:"paymentAmount,omitempty"`
}

// Transaction is a tagged union keyed by Type. At most one of the variant payloads is
// expected to be set, and which one is required depends on Type:
//
//   - transfer: Transfer
//   - loan_given: LoanGiven
//   - loan_received: LoanReceived
//   - loan_payment_received, loan_payment_made: LoanPayment
//
// Transactions are owned by the transaction store; the ledger never modifies one.
type Transaction struct {
	ID            string
	Type          TransactionType
	Amount        int64
	PaymentMethod PaymentMethod

	Transfer     *TransferDetails
	LoanGiven    *LoanGivenDetails
	LoanReceived *LoanReceivedDetails
	LoanPayment  *LoanPaymentDetails

	Date        time.Time
	Description string
	Category    string
}

// ImpactVector is the effect of a single transaction on the five tracked ledgers plus the
// per-account balance deltas. Zero deltas are never recorded.
type ImpactVector struct {
	CashFlow      int64            `json:"cashFlow"`
	Income        int64            `json:"income"`
	Expense       int64            `json:"expense"`
	Assets        int64            `json:"assets"`
	Liabilities   int64            `json:"liabilities"`
	AccountDeltas map[string]int64 `json:"accountDeltas"`
}

// IsZero reports whether the vector changes nothing.
func (v ImpactVector) IsZero() bool {
	return v.CashFlow == 0 && v.Income == 0 && v.Expense == 0 &&
		v.Assets == 0 && v.Liabilities == 0 && len(v.AccountDeltas) == 0
}
