package repository_test

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/testutil"
)

func newKey(t *testing.T) string {
	t.Helper()

	var k fernet.Key
	if err := k.Generate(); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return k.Encode()
}

func newCodec(t *testing.T, keys string) *repository.DetailsCodec {
	t.Helper()

	codec, err := repository.NewDetailsCodec(keys)
	if err != nil {
		t.Fatalf("NewDetailsCodec() returned unexpected error: %v", err)
	}
	return codec
}

func TestDetailsCodec(t *testing.T) {
	loan := testutil.NewTransaction().LoanGiven("Camila", 800_000).Value()

	t.Run("plain JSON without a key", func(t *testing.T) {
		codec := newCodec(t, "")

		value, err := codec.Encode(loan)
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}
		if !strings.Contains(value.String, "Camila") {
			t.Errorf("Expected plain JSON details, got %s", value.String)
		}

		var out ledger.Transaction
		if err := codec.Decode(value, &out); err != nil {
			t.Fatalf("Decode() returned unexpected error: %v", err)
		}
		if out.LoanGiven == nil || out.LoanGiven.Borrower != "Camila" {
			t.Errorf("Expected borrower Camila, got %+v", out.LoanGiven)
		}
	})

	t.Run("encrypts with a key", func(t *testing.T) {
		codec := newCodec(t, newKey(t))

		value, err := codec.Encode(loan)
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}
		if strings.Contains(value.String, "Camila") {
			t.Errorf("Expected borrower to be encrypted, got %s", value.String)
		}

		var out ledger.Transaction
		if err := codec.Decode(value, &out); err != nil {
			t.Fatalf("Decode() returned unexpected error: %v", err)
		}
		if out.LoanGiven == nil || out.LoanGiven.Borrower != "Camila" {
			t.Errorf("Expected borrower Camila, got %+v", out.LoanGiven)
		}
	})

	t.Run("decrypts with a rotated key list", func(t *testing.T) {
		oldKey := newKey(t)
		value, err := newCodec(t, oldKey).Encode(loan)
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}

		rotated := newCodec(t, newKey(t)+","+oldKey)

		var out ledger.Transaction
		if err := rotated.Decode(value, &out); err != nil {
			t.Fatalf("Decode() returned unexpected error: %v", err)
		}
	})

	t.Run("wrong key is a data inconsistency", func(t *testing.T) {
		value, err := newCodec(t, newKey(t)).Encode(loan)
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}

		var out ledger.Transaction
		err = newCodec(t, newKey(t)).Decode(value, &out)
		if !errors.Is(err, apperrors.ErrDataInconsistency) {
			t.Errorf("Expected ErrDataInconsistency, got %v", err)
		}
	})

	t.Run("encrypted details without a key", func(t *testing.T) {
		value, err := newCodec(t, newKey(t)).Encode(loan)
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}

		var out ledger.Transaction
		err = newCodec(t, "").Decode(value, &out)
		if !errors.Is(err, apperrors.ErrDataInconsistency) {
			t.Errorf("Expected ErrDataInconsistency, got %v", err)
		}
	})

	t.Run("no payload stores NULL", func(t *testing.T) {
		value, err := newCodec(t, newKey(t)).Encode(testutil.NewTransaction().Income(10).Value())
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}
		if value != (sql.NullString{}) {
			t.Errorf("Expected NULL, got %+v", value)
		}
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		if _, err := repository.NewDetailsCodec("not-a-key"); err == nil {
			t.Error("Expected error for malformed key, got nil")
		}
	})
}
