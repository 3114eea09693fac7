package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/service"
)

// NewTestAggregator wires the ledger engine the way the server does.
func NewTestAggregator() *ledger.Aggregator {
	return ledger.NewAggregator(ledger.NewCalculator(ledger.NewRegistry()))
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db, nil)

	return service.NewLedgerService(
		transactionRepo,
		NewTestAggregator(),
		4,
		zerolog.Nop(),
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	ss, err := service.NewSnapshotService(
		NewTestLedgerService(t, db),
		repository.NewSnapshotRepository(db),
		"@daily",
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("Failed to create snapshot service: %v", err)
	}
	t.Cleanup(func() {
		<-ss.Stop().Done()
	})
	return ss
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"metrics_snapshots": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeDescription generates a unique transaction description for testing.
//
// Example usage:
//
//	desc := testutil.MakeDescription("Groceries")
//	// Returns: "Groceries ABC123"
func MakeDescription(base string) string {
	if base == "" {
		base = "Transaction"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// CommonCategories contains frequently used transaction categories.
var CommonCategories = []string{"salary", "groceries", "rent", "transport", "utilities"}

// RandomCategory returns a random category from CommonCategories.
func RandomCategory() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonCategories[rand.Intn(len(CommonCategories))]
}
