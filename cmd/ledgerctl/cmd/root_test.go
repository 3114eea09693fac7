package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

const sampleJSON = `[
	{"id": "income-1", "type": "income", "amount": 3000000, "paymentMethod": {"id": "nequi"}},
	{"id": "expense-1", "type": "expense", "amount": 1200000, "paymentMethod": {"id": "davivienda"}},
	{"id": "transfer-1", "type": "transfer", "amount": 250000, "paymentMethod": {"id": "nequi"},
	 "transferDetails": {"fromMethod": "nequi", "toMethod": "davivienda"}},
	{"id": "loan-given-1", "type": "loan_given", "amount": 800000, "paymentMethod": {"id": "nequi"},
	 "loanGivenDetails": {"borrower": "Camila"}},
	{"id": "loan-received-1", "type": "loan_received", "amount": 2000000, "paymentMethod": {"id": "davivienda"},
	 "loanReceivedDetails": {"lender": "Banco"}},
	{"id": "payment-received-1", "type": "loan_payment_received", "amount": 300000, "paymentMethod": {"id": "nequi"},
	 "loanPaymentDetails": {"originalLoanId": "loan-given-1"}},
	{"id": "payment-made-1", "type": "loan_payment_made", "amount": 200000, "paymentMethod": {"id": "davivienda"},
	 "loanPaymentDetails": {"originalLoanId": "loan-received-1"}}
]`

const sampleYAML = `
- id: income-1
  type: income
  amount: 3000000
  paymentMethod: {id: nequi}
  date: 2024-01-15
- id: loan-given-1
  type: loan_given
  amount: 800000
  paymentMethod: {id: nequi}
  loanGivenDetails:
    borrower: Camila
- id: broken
  type: expense
  amount: 10.5
  paymentMethod: {id: cash}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMetricsCmd(t *testing.T) {
	t.Run("aggregates a JSON file", func(t *testing.T) {
		path := writeFile(t, "batch.json", sampleJSON)

		out, _, err := run(t, "", "metrics", "-f", path)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var resp response.MetricsResponse
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("Failed to decode output: %v\n%s", err, out)
		}

		m := resp.Metrics
		if m.TotalIncome != 3000000 || m.TotalExpense != 1200000 || m.NetWorth != -1300000 {
			t.Errorf("Unexpected metrics %+v", m)
		}
		if m.AccountBalances["nequi"] != 2250000 || m.AccountBalances["davivienda"] != 850000 {
			t.Errorf("Unexpected balances %v", m.AccountBalances)
		}
		if resp.Display.NetCashFlow != "31000.00" {
			t.Errorf("Expected display cash flow 31000.00, got %q", resp.Display.NetCashFlow)
		}
	})

	t.Run("reads stdin and honours the exponent", func(t *testing.T) {
		out, _, err := run(t, sampleJSON, "metrics", "-f", "-", "--exponent", "0", "--shards", "3")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var resp response.MetricsResponse
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if resp.Display.TotalIncome != "3000000" {
			t.Errorf("Expected display income 3000000, got %q", resp.Display.TotalIncome)
		}
	})

	t.Run("fail-fast stops at the malformed YAML record", func(t *testing.T) {
		path := writeFile(t, "batch.yaml", sampleYAML)

		_, _, err := run(t, "", "metrics", "-f", path)

		var txErr ledger.TransactionError
		if !errors.As(err, &txErr) || txErr.Index != 2 {
			t.Fatalf("Expected failure at index 2, got %v", err)
		}
		if !errors.Is(err, apperrors.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("collect-errors skips the malformed YAML record", func(t *testing.T) {
		path := writeFile(t, "batch.yml", sampleYAML)

		out, stderr, err := run(t, "", "metrics", "-f", path, "--mode", "collect-errors")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var resp response.MetricsResponse
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if resp.Metrics.TransactionCount != 2 || resp.Metrics.TotalAssets != 800000 {
			t.Errorf("Unexpected metrics %+v", resp.Metrics)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].TransactionID != "broken" {
			t.Errorf("Expected the broken record to be reported, got %+v", resp.Errors)
		}
		if !strings.Contains(stderr, "transactions skipped") {
			t.Errorf("Expected a warning on stderr, got %q", stderr)
		}
	})

	t.Run("rejects an invalid mode", func(t *testing.T) {
		path := writeFile(t, "batch.json", sampleJSON)

		_, _, err := run(t, "", "metrics", "-f", path, "--mode", "lenient")
		if !errors.Is(err, apperrors.ErrInvalidAggregationMode) {
			t.Errorf("Expected ErrInvalidAggregationMode, got %v", err)
		}
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		_, _, err := run(t, "[]", "metrics", "-f", "-")
		if !errors.Is(err, apperrors.ErrEmptyBatch) {
			t.Errorf("Expected ErrEmptyBatch, got %v", err)
		}
	})

	t.Run("requires a file", func(t *testing.T) {
		if _, _, err := run(t, "", "metrics"); err == nil {
			t.Error("Expected error without --file, got nil")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := run(t, "", "metrics", "-f", filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Error("Expected error for missing file, got nil")
		}
	})
}

func TestSummaryCmd(t *testing.T) {
	path := writeFile(t, "batch.yaml", sampleYAML)

	out, stderr, err := run(t, "", "summary", "-f", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var resp map[ledger.TransactionType]response.TypeSummaryResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("Expected 2 groups, got %v", resp)
	}
	if resp[ledger.LoanGiven].DisplayTotal != "8000.00" {
		t.Errorf("Expected loan_given total 8000.00, got %q", resp[ledger.LoanGiven].DisplayTotal)
	}
	if !strings.Contains(stderr, "broken") {
		t.Errorf("Expected the skipped record on stderr, got %q", stderr)
	}
}

func TestImpactCmd(t *testing.T) {
	t.Run("prints one vector per transaction", func(t *testing.T) {
		path := writeFile(t, "batch.json", sampleJSON)

		out, _, err := run(t, "", "impact", "-f", path)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var resp struct {
			Impacts []struct {
				Index  int                 `json:"index"`
				Impact ledger.ImpactVector `json:"impact"`
			} `json:"impacts"`
			Errors []ledger.TransactionError `json:"errors"`
		}
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if len(resp.Impacts) != 7 || len(resp.Errors) != 0 {
			t.Fatalf("Expected 7 impacts and no errors, got %d and %d", len(resp.Impacts), len(resp.Errors))
		}

		transfer := resp.Impacts[2].Impact
		if transfer.CashFlow != 0 || transfer.AccountDeltas["nequi"] != -250000 || transfer.AccountDeltas["davivienda"] != 250000 {
			t.Errorf("Unexpected transfer impact %+v", transfer)
		}
	})

	t.Run("collect-errors keeps original positions", func(t *testing.T) {
		path := writeFile(t, "batch.yaml", sampleYAML)

		out, _, err := run(t, "", "impact", "-f", path, "--mode", "collect-errors")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var resp struct {
			Impacts []struct {
				Index int `json:"index"`
			} `json:"impacts"`
			Errors []ledger.TransactionError `json:"errors"`
		}
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if len(resp.Impacts) != 2 || resp.Impacts[1].Index != 1 {
			t.Errorf("Unexpected impacts %+v", resp.Impacts)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Index != 2 {
			t.Errorf("Unexpected errors %+v", resp.Errors)
		}
	})
}

func TestTypesCmd(t *testing.T) {
	out, _, err := run(t, "", "types")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var descriptors []ledger.TypeDescriptor
	if err := json.Unmarshal([]byte(out), &descriptors); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if len(descriptors) != 7 || descriptors[2].Type != ledger.Transfer {
		t.Errorf("Unexpected descriptors %+v", descriptors)
	}
}
