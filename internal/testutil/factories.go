package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/repository"
)

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	// Simple creation with defaults (an income of 100000 into "cash")
//	tx := testutil.NewTransaction().Build(t, db)
//
//	// Customized transaction
//	tx := testutil.NewTransaction().
//	    Transfer("nequi", "davivienda", 50000).
//	    WithDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
//
//	// Without touching the database
//	tx := testutil.NewTransaction().Expense(300).Value()
type TransactionBuilder struct {
	tx ledger.Transaction
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		tx: ledger.Transaction{
			ID:            MakeID(),
			Type:          ledger.Income,
			Amount:        100_000,
			PaymentMethod: ledger.PaymentMethod{ID: "cash", Name: "Cash"},
			Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Description:   MakeDescription("Test transaction"),
			Category:      RandomCategory(),
		},
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.tx.ID = id
	return b
}

// WithAmount sets a custom amount in minor units.
func (b *TransactionBuilder) WithAmount(amount int64) *TransactionBuilder {
	b.tx.Amount = amount
	return b
}

// WithType overrides the type tag without touching the payload.
func (b *TransactionBuilder) WithType(t ledger.TransactionType) *TransactionBuilder {
	b.tx.Type = t
	return b
}

// WithPaymentMethod sets the account the transaction settles against.
func (b *TransactionBuilder) WithPaymentMethod(id string) *TransactionBuilder {
	b.tx.PaymentMethod = ledger.PaymentMethod{ID: id}
	return b
}

// WithDate sets a custom date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.tx.Date = date
	return b
}

// WithDescription sets a custom description.
func (b *TransactionBuilder) WithDescription(desc string) *TransactionBuilder {
	b.tx.Description = desc
	return b
}

// WithCategory sets a custom category.
func (b *TransactionBuilder) WithCategory(category string) *TransactionBuilder {
	b.tx.Category = category
	return b
}

// Income makes the transaction an income of amount.
func (b *TransactionBuilder) Income(amount int64) *TransactionBuilder {
	b.reset(ledger.Income, amount)
	return b
}

// Expense makes the transaction an expense of amount.
func (b *TransactionBuilder) Expense(amount int64) *TransactionBuilder {
	b.reset(ledger.Expense, amount)
	return b
}

// Transfer makes the transaction a transfer of amount between two accounts.
func (b *TransactionBuilder) Transfer(from, to string, amount int64) *TransactionBuilder {
	b.reset(ledger.Transfer, amount)
	b.tx.PaymentMethod = ledger.PaymentMethod{ID: from}
	b.tx.Transfer = &ledger.TransferDetails{FromMethod: from, ToMethod: to}
	return b
}

// LoanGiven makes the transaction a loan of amount to borrower.
func (b *TransactionBuilder) LoanGiven(borrower string, amount int64) *TransactionBuilder {
	b.reset(ledger.LoanGiven, amount)
	b.tx.LoanGiven = &ledger.LoanGivenDetails{Borrower: borrower, Terms: "12 months"}
	return b
}

// LoanReceived makes the transaction a loan of amount from lender.
func (b *TransactionBuilder) LoanReceived(lender string, amount int64) *TransactionBuilder {
	b.reset(ledger.LoanReceived, amount)
	b.tx.LoanReceived = &ledger.LoanReceivedDetails{Lender: lender, Terms: "12 months"}
	return b
}

// LoanPaymentReceived makes the transaction a repayment of amount on a loan previously given.
func (b *TransactionBuilder) LoanPaymentReceived(loanID string, amount int64) *TransactionBuilder {
	b.reset(ledger.LoanPaymentReceived, amount)
	b.tx.LoanPayment = &ledger.LoanPaymentDetails{OriginalLoanID: loanID, PaymentAmount: amount}
	return b
}

// LoanPaymentMade makes the transaction a repayment of amount on a loan previously received.
func (b *TransactionBuilder) LoanPaymentMade(loanID string, amount int64) *TransactionBuilder {
	b.reset(ledger.LoanPaymentMade, amount)
	b.tx.LoanPayment = &ledger.LoanPaymentDetails{OriginalLoanID: loanID, PaymentAmount: amount}
	return b
}

func (b *TransactionBuilder) reset(t ledger.TransactionType, amount int64) {
	b.tx.Type = t
	b.tx.Amount = amount
	b.tx.Transfer = nil
	b.tx.LoanGiven = nil
	b.tx.LoanReceived = nil
	b.tx.LoanPayment = nil
}

// Value returns the transaction without storing it.
func (b *TransactionBuilder) Value() ledger.Transaction {
	return b.tx
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) ledger.Transaction {
	t.Helper()

	repo := repository.NewTransactionRepository(db, nil)
	if err := repo.InsertTransaction(context.Background(), b.tx); err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return b.tx
}

// Convenience functions

// CreateIncome stores an income of amount into the given account.
//
// Example usage:
//
//	tx := testutil.CreateIncome(t, db, "nequi", 3000000)
func CreateIncome(t *testing.T, db *sql.DB, account string, amount int64) ledger.Transaction {
	t.Helper()
	return NewTransaction().Income(amount).WithPaymentMethod(account).Build(t, db)
}

// CreateExpense stores an expense of amount from the given account.
func CreateExpense(t *testing.T, db *sql.DB, account string, amount int64) ledger.Transaction {
	t.Helper()
	return NewTransaction().Expense(amount).WithPaymentMethod(account).Build(t, db)
}

// SampleBatch returns one transaction of every registered type. None of them are stored.
// Totals: income 3000000, expense 1200000, assets 500000, liabilities 1800000,
// cash flow 3100000 (nequi 2250000, davivienda 850000).
func SampleBatch() []ledger.Transaction {
	return []ledger.Transaction{
		NewTransaction().WithID("income-1").Income(3_000_000).WithPaymentMethod("nequi").Value(),
		NewTransaction().WithID("expense-1").Expense(1_200_000).WithPaymentMethod("davivienda").Value(),
		NewTransaction().WithID("transfer-1").Transfer("nequi", "davivienda", 250_000).Value(),
		NewTransaction().WithID("loan-given-1").LoanGiven("Camila", 800_000).WithPaymentMethod("nequi").Value(),
		NewTransaction().WithID("loan-received-1").LoanReceived("Banco", 2_000_000).WithPaymentMethod("davivienda").Value(),
		NewTransaction().WithID("payment-received-1").LoanPaymentReceived("loan-given-1", 300_000).WithPaymentMethod("nequi").Value(),
		NewTransaction().WithID("payment-made-1").LoanPaymentMade("loan-received-1", 200_000).WithPaymentMethod("davivienda").Value(),
	}
}
