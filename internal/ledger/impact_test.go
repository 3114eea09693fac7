package ledger_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

func newCalculator() *ledger.Calculator {
	return ledger.NewCalculator(ledger.NewRegistry())
}

func income(id, method string, amount int64) ledger.Transaction {
	return ledger.Transaction{ID: id, Type: ledger.Income, Amount: amount, PaymentMethod: ledger.PaymentMethod{ID: method}}
}

func expense(id, method string, amount int64) ledger.Transaction {
	return ledger.Transaction{ID: id, Type: ledger.Expense, Amount: amount, PaymentMethod: ledger.PaymentMethod{ID: method}}
}

func transfer(id, from, to string, amount int64) ledger.Transaction {
	return ledger.Transaction{
		ID:            id,
		Type:          ledger.Transfer,
		Amount:        amount,
		PaymentMethod: ledger.PaymentMethod{ID: from},
		Transfer:      &ledger.TransferDetails{FromMethod: from, ToMethod: to},
	}
}

func loanGiven(id, method string, amount int64) ledger.Transaction {
	return ledger.Transaction{
		ID:            id,
		Type:          ledger.LoanGiven,
		Amount:        amount,
		PaymentMethod: ledger.PaymentMethod{ID: method},
		LoanGiven:     &ledger.LoanGivenDetails{Borrower: "Camila", Terms: "3 months"},
	}
}

func loanReceived(id, method string, amount int64) ledger.Transaction {
	return ledger.Transaction{
		ID:            id,
		Type:          ledger.LoanReceived,
		Amount:        amount,
		PaymentMethod: ledger.PaymentMethod{ID: method},
		LoanReceived:  &ledger.LoanReceivedDetails{Lender: "Bancolombia"},
	}
}

func loanPayment(id string, t ledger.TransactionType, method, loanID string, amount int64) ledger.Transaction {
	return ledger.Transaction{
		ID:            id,
		Type:          t,
		Amount:        amount,
		PaymentMethod: ledger.PaymentMethod{ID: method},
		LoanPayment:   &ledger.LoanPaymentDetails{OriginalLoanID: loanID, PaymentAmount: amount},
	}
}

func TestCalculator_Compute(t *testing.T) {
	calc := newCalculator()

	tests := []struct {
		name   string
		tx     ledger.Transaction
		want   ledger.ImpactVector
		deltas map[string]int64
	}{
		{
			name:   "income credits the payment method",
			tx:     income("i1", "nequi", 1_000_000),
			want:   ledger.ImpactVector{CashFlow: 1_000_000, Income: 1_000_000},
			deltas: map[string]int64{"nequi": 1_000_000},
		},
		{
			name:   "expense debits the payment method",
			tx:     expense("e1", "cash", 45_000),
			want:   ledger.ImpactVector{CashFlow: -45_000, Expense: 45_000},
			deltas: map[string]int64{"cash": -45_000},
		},
		{
			name:   "transfer moves balance without touching the statement",
			tx:     transfer("t1", "nequi", "davivienda_transfer", 100_000),
			want:   ledger.ImpactVector{},
			deltas: map[string]int64{"nequi": -100_000, "davivienda_transfer": 100_000},
		},
		{
			name:   "loan given swaps cash for a receivable",
			tx:     loanGiven("lg1", "nequi", 500_000),
			want:   ledger.ImpactVector{CashFlow: -500_000, Assets: 500_000},
			deltas: map[string]int64{"nequi": -500_000},
		},
		{
			name:   "loan received swaps a payable for cash",
			tx:     loanReceived("lr1", "davivienda", 2_000_000),
			want:   ledger.ImpactVector{CashFlow: 2_000_000, Liabilities: 2_000_000},
			deltas: map[string]int64{"davivienda": 2_000_000},
		},
		{
			name:   "loan payment received reduces the receivable",
			tx:     loanPayment("pr1", ledger.LoanPaymentReceived, "nequi", "lg1", 100_000),
			want:   ledger.ImpactVector{CashFlow: 100_000, Assets: -100_000},
			deltas: map[string]int64{"nequi": 100_000},
		},
		{
			name:   "loan payment made reduces the payable",
			tx:     loanPayment("pm1", ledger.LoanPaymentMade, "davivienda", "lr1", 250_000),
			want:   ledger.ImpactVector{CashFlow: -250_000, Liabilities: -250_000},
			deltas: map[string]int64{"davivienda": -250_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Compute(tt.tx)
			if err != nil {
				t.Fatalf("Compute() returned unexpected error: %v", err)
			}

			if got.CashFlow != tt.want.CashFlow || got.Income != tt.want.Income || got.Expense != tt.want.Expense ||
				got.Assets != tt.want.Assets || got.Liabilities != tt.want.Liabilities {
				t.Errorf("Compute() = %+v, want ledgers %+v", got, tt.want)
			}

			if len(got.AccountDeltas) != len(tt.deltas) {
				t.Fatalf("Expected %d account deltas, got %v", len(tt.deltas), got.AccountDeltas)
			}
			for account, delta := range tt.deltas {
				if got.AccountDeltas[account] != delta {
					t.Errorf("AccountDeltas[%s] = %d, want %d", account, got.AccountDeltas[account], delta)
				}
			}
		})
	}
}

func TestCalculator_Compute_TransferInvariants(t *testing.T) {
	calc := newCalculator()

	for _, amount := range []int64{1, 7, 100_000, 999_999_999} {
		v, err := calc.Compute(transfer("t", "a", "b", amount))
		if err != nil {
			t.Fatalf("Compute() returned unexpected error: %v", err)
		}

		if v.CashFlow != 0 || v.Income != 0 || v.Expense != 0 {
			t.Errorf("amount %d: transfer touched cash flow or statement: %+v", amount, v)
		}

		nonZero := 0
		var sum int64
		for _, d := range v.AccountDeltas {
			if d != 0 {
				nonZero++
			}
			sum += d
		}
		if nonZero != 2 || sum != 0 {
			t.Errorf("amount %d: expected two opposite deltas, got %v", amount, v.AccountDeltas)
		}
		if v.AccountDeltas["a"] != -amount || v.AccountDeltas["b"] != amount {
			t.Errorf("amount %d: unexpected deltas %v", amount, v.AccountDeltas)
		}
	}
}

func TestCalculator_Compute_ZeroAmount(t *testing.T) {
	calc := newCalculator()

	txs := []ledger.Transaction{
		income("i", "nequi", 0),
		expense("e", "nequi", 0),
		transfer("t", "nequi", "cash", 0),
		loanGiven("lg", "nequi", 0),
		loanReceived("lr", "nequi", 0),
		loanPayment("pr", ledger.LoanPaymentReceived, "nequi", "lg", 0),
		loanPayment("pm", ledger.LoanPaymentMade, "nequi", "lr", 0),
	}

	for _, tx := range txs {
		t.Run(string(tx.Type), func(t *testing.T) {
			v, err := calc.Compute(tx)
			if err != nil {
				t.Fatalf("Compute() returned unexpected error: %v", err)
			}
			if !v.IsZero() {
				t.Errorf("Expected all-zero vector, got %+v", v)
			}
		})
	}
}

func TestCalculator_Compute_Errors(t *testing.T) {
	calc := newCalculator()

	t.Run("transfer without details is an invalid payload", func(t *testing.T) {
		tx := transfer("t1", "nequi", "cash", 100)
		tx.Transfer = nil

		_, err := calc.Compute(tx)
		if !errors.Is(err, apperrors.ErrInvalidTransactionPayload) {
			t.Fatalf("Expected ErrInvalidTransactionPayload, got %v", err)
		}
		var payloadErr *ledger.PayloadError
		if !errors.As(err, &payloadErr) {
			t.Fatalf("Expected *PayloadError, got %T", err)
		}
		if payloadErr.Field != "transferDetails" {
			t.Errorf("Expected field transferDetails, got %q", payloadErr.Field)
		}
		if payloadErr.TransactionID != "t1" {
			t.Errorf("Expected transaction ID t1, got %q", payloadErr.TransactionID)
		}
	})

	t.Run("loan payment without original loan id", func(t *testing.T) {
		tx := loanPayment("p1", ledger.LoanPaymentReceived, "nequi", "", 100)

		_, err := calc.Compute(tx)
		var payloadErr *ledger.PayloadError
		if !errors.As(err, &payloadErr) || payloadErr.Field != "originalLoanId" {
			t.Fatalf("Expected missing originalLoanId, got %v", err)
		}
	})

	t.Run("payload field names", func(t *testing.T) {
		noMethod := income("i", "", 10)
		sameAccount := transfer("t", "nequi", "nequi", 10)
		noTo := transfer("t", "nequi", " ", 10)
		noBorrower := loanGiven("lg", "nequi", 10)
		noBorrower.LoanGiven = &ledger.LoanGivenDetails{}
		noLoanDetails := loanReceived("lr", "nequi", 10)
		noLoanDetails.LoanReceived = nil
		noPaymentDetails := loanPayment("pm", ledger.LoanPaymentMade, "nequi", "x", 10)
		noPaymentDetails.LoanPayment = nil

		cases := map[string]ledger.Transaction{
			"paymentMethod":             noMethod,
			"transferDetails.toMethod":  noTo,
			"loanGivenDetails.borrower": noBorrower,
			"loanReceivedDetails":       noLoanDetails,
			"loanPaymentDetails":        noPaymentDetails,
		}
		for field, tx := range cases {
			_, err := calc.Compute(tx)
			var payloadErr *ledger.PayloadError
			if !errors.As(err, &payloadErr) {
				t.Errorf("%s: expected *PayloadError, got %v", field, err)
				continue
			}
			if payloadErr.Field != field {
				t.Errorf("Expected field %q, got %q", field, payloadErr.Field)
			}
		}

		if _, err := calc.Compute(sameAccount); !errors.Is(err, apperrors.ErrInvalidTransactionPayload) {
			t.Errorf("Expected transfer to the same account to be rejected, got %v", err)
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := calc.Compute(expense("e1", "cash", -5))
		if !errors.Is(err, apperrors.ErrInvalidAmount) {
			t.Fatalf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("amount above MaxAmount", func(t *testing.T) {
		if _, err := calc.Compute(income("i1", "cash", ledger.MaxAmount)); err != nil {
			t.Fatalf("Expected MaxAmount to be accepted, got %v", err)
		}

		_, err := calc.Compute(income("i2", "cash", ledger.MaxAmount+1))
		var amountErr *ledger.AmountError
		if !errors.As(err, &amountErr) || amountErr.TransactionID != "i2" {
			t.Fatalf("Expected *AmountError for i2, got %v", err)
		}
	})

	t.Run("transfer to the same account names the reason", func(t *testing.T) {
		_, err := calc.Compute(transfer("t1", "nequi", " nequi ", 10))

		var payloadErr *ledger.PayloadError
		if !errors.As(err, &payloadErr) {
			t.Fatalf("Expected *PayloadError, got %v", err)
		}
		if payloadErr.Field != "transferDetails.toMethod" || payloadErr.Reason == "" {
			t.Errorf("Unexpected payload error %+v", payloadErr)
		}
		want := "invalid transaction payload: transaction t1: transferDetails.toMethod must differ from fromMethod"
		if err.Error() != want {
			t.Errorf("Expected %q, got %q", want, err.Error())
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		tx := income("x1", "cash", 5)
		tx.Type = "refund"

		_, err := calc.Compute(tx)
		if !errors.Is(err, apperrors.ErrInvalidTransactionKind) {
			t.Errorf("Expected ErrInvalidTransactionKind, got %v", err)
		}
		if !errors.Is(err, apperrors.ErrUnknownTransactionType) {
			t.Errorf("Expected ErrUnknownTransactionType, got %v", err)
		}
	})

	t.Run("kind is checked before amount and payload", func(t *testing.T) {
		tx := ledger.Transaction{ID: "x", Type: "bogus", Amount: -1}

		_, err := calc.Compute(tx)
		if errors.Is(err, apperrors.ErrInvalidAmount) || !errors.Is(err, apperrors.ErrInvalidTransactionKind) {
			t.Errorf("Expected kind error first, got %v", err)
		}
	})
}

func TestCalculator_Compute_TrimsAccounts(t *testing.T) {
	calc := newCalculator()

	v, err := calc.Compute(transfer("t1", " nequi", "davivienda ", 250))
	if err != nil {
		t.Fatalf("Compute() returned unexpected error: %v", err)
	}
	if len(v.AccountDeltas) != 2 || v.AccountDeltas["nequi"] != -250 || v.AccountDeltas["davivienda"] != 250 {
		t.Errorf("Expected deltas keyed by trimmed accounts, got %v", v.AccountDeltas)
	}

	v, err = calc.Compute(income("i1", " nequi ", 100))
	if err != nil {
		t.Fatalf("Compute() returned unexpected error: %v", err)
	}
	if v.AccountDeltas["nequi"] != 100 {
		t.Errorf("Expected delta on nequi, got %v", v.AccountDeltas)
	}
}

// Every registered type must have an impact rule; a type added to the registry without
// one would otherwise surface only at runtime.
func TestCalculator_Compute_CoversRegistry(t *testing.T) {
	registry := ledger.NewRegistry()
	calc := ledger.NewCalculator(registry)

	for _, typ := range registry.Types() {
		tx := ledger.Transaction{
			ID:            "cover",
			Type:          typ,
			Amount:        1,
			PaymentMethod: ledger.PaymentMethod{ID: "nequi"},
			Transfer:      &ledger.TransferDetails{FromMethod: "nequi", ToMethod: "cash"},
			LoanGiven:     &ledger.LoanGivenDetails{Borrower: "b"},
			LoanReceived:  &ledger.LoanReceivedDetails{Lender: "l"},
			LoanPayment:   &ledger.LoanPaymentDetails{OriginalLoanID: "loan"},
		}
		v, err := calc.Compute(tx)
		if err != nil {
			t.Errorf("%s: Compute() returned unexpected error: %v", typ, err)
			continue
		}
		if v.IsZero() {
			t.Errorf("%s: expected a non-zero impact for amount 1", typ)
		}
	}
}
