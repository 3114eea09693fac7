package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ls := testutil.NewTestLedgerService(t, db)
	return NewTransactionHandler(ls, response.NewFormatter(2)), db
}

func setupMetricsHandler(t *testing.T) (*MetricsHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ls := testutil.NewTestLedgerService(t, db)
	ss := testutil.NewTestSnapshotService(t, db)
	return NewMetricsHandler(ls, ss, response.NewFormatter(2)), db
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return v
}
