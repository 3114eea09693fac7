package ledger_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

func TestRegistry_Lookup(t *testing.T) {
	registry := ledger.NewRegistry()

	t.Run("knows the seven built-in types", func(t *testing.T) {
		types := registry.Types()
		if len(types) != 7 {
			t.Fatalf("Expected 7 types, got %d", len(types))
		}
		for _, typ := range types {
			d, err := registry.Lookup(typ)
			if err != nil {
				t.Errorf("Lookup(%s) returned unexpected error: %v", typ, err)
			}
			if d.Type != typ {
				t.Errorf("Lookup(%s) returned descriptor for %s", typ, d.Type)
			}
		}
	})

	t.Run("declares accounting semantics", func(t *testing.T) {
		transfer, _ := registry.Lookup(ledger.Transfer)
		if !transfer.RequiresTwoAccounts || transfer.AffectsIncome || transfer.AffectsExpense {
			t.Errorf("Unexpected transfer descriptor: %+v", transfer)
		}

		given, _ := registry.Lookup(ledger.LoanGiven)
		if !given.CreatesAsset || !given.RequiresCounterpartyRef {
			t.Errorf("Unexpected loan_given descriptor: %+v", given)
		}

		made, _ := registry.Lookup(ledger.LoanPaymentMade)
		if !made.ReducesLiability || made.CreatesLiability {
			t.Errorf("Unexpected loan_payment_made descriptor: %+v", made)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := registry.Lookup("dividend")
		if !errors.Is(err, apperrors.ErrUnknownTransactionType) {
			t.Errorf("Expected ErrUnknownTransactionType, got %v", err)
		}
	})

	t.Run("Types returns a copy", func(t *testing.T) {
		types := registry.Types()
		types[0] = "tampered"

		if _, err := registry.Lookup(ledger.Income); err != nil {
			t.Errorf("Registry changed through Types(): %v", err)
		}
		if registry.Types()[0] != ledger.Income {
			t.Errorf("Expected first type to stay income, got %s", registry.Types()[0])
		}
	})
}
