package response

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
)

// Formatter renders minor-unit amounts as fixed-point decimal strings.
// With exponent 2, 123456 becomes "1234.56".
type Formatter struct {
	exponent int32
}

// NewFormatter creates a Formatter for a currency with the given minor-unit exponent.
func NewFormatter(exponent int32) Formatter {
	if exponent < 0 {
		exponent = 0
	}
	return Formatter{exponent: exponent}
}

// Amount formats a single minor-unit amount.
func (f Formatter) Amount(minor int64) string {
	return decimal.New(minor, -f.exponent).StringFixed(f.exponent)
}

// Balances formats a map of per-account amounts.
func (f Formatter) Balances(minor map[string]int64) map[string]string {
	out := make(map[string]string, len(minor))
	for account, amount := range minor {
		out[account] = f.Amount(amount)
	}
	return out
}

// MetricsDisplay mirrors AggregateMetrics in display units.
type MetricsDisplay struct {
	TotalIncome      string            `json:"totalIncome"`
	TotalExpense     string            `json:"totalExpense"`
	NetCashFlow      string            `json:"netCashFlow"`
	TotalAssets      string            `json:"totalAssets"`
	TotalLiabilities string            `json:"totalLiabilities"`
	NetWorth         string            `json:"netWorth"`
	AccountBalances  map[string]string `json:"accountBalances"`
}

// Metrics converts aggregate metrics to display units.
func (f Formatter) Metrics(m ledger.AggregateMetrics) MetricsDisplay {
	return MetricsDisplay{
		TotalIncome:      f.Amount(m.TotalIncome),
		TotalExpense:     f.Amount(m.TotalExpense),
		NetCashFlow:      f.Amount(m.NetCashFlow),
		TotalAssets:      f.Amount(m.TotalAssets),
		TotalLiabilities: f.Amount(m.TotalLiabilities),
		NetWorth:         f.Amount(m.NetWorth),
		AccountBalances:  f.Balances(m.AccountBalances),
	}
}

// ImpactDisplay mirrors ImpactVector in display units.
type ImpactDisplay struct {
	CashFlow      string            `json:"cashFlow"`
	Income        string            `json:"income"`
	Expense       string            `json:"expense"`
	Assets        string            `json:"assets"`
	Liabilities   string            `json:"liabilities"`
	AccountDeltas map[string]string `json:"accountDeltas"`
}

// Impact converts an impact vector to display units.
func (f Formatter) Impact(v ledger.ImpactVector) ImpactDisplay {
	return ImpactDisplay{
		CashFlow:      f.Amount(v.CashFlow),
		Income:        f.Amount(v.Income),
		Expense:       f.Amount(v.Expense),
		Assets:        f.Amount(v.Assets),
		Liabilities:   f.Amount(v.Liabilities),
		AccountDeltas: f.Balances(v.AccountDeltas),
	}
}

// MetricsResponse is returned by the metrics and compute endpoints.
// Errors lists the skipped transactions in collect-errors mode and is empty otherwise.
type MetricsResponse struct {
	Mode    ledger.Mode               `json:"mode"`
	Metrics ledger.AggregateMetrics   `json:"metrics"`
	Display MetricsDisplay            `json:"display"`
	Errors  []ledger.TransactionError `json:"errors"`
}

// NewMetricsResponse builds a MetricsResponse from a service result.
func (f Formatter) NewMetricsResponse(result model.MetricsResult) MetricsResponse {
	errs := result.Errors
	if errs == nil {
		errs = []ledger.TransactionError{}
	}
	return MetricsResponse{
		Mode:    result.Mode,
		Metrics: result.Metrics,
		Display: f.Metrics(result.Metrics),
		Errors:  errs,
	}
}

// TransactionResponse wraps a transaction in its wire shape with its display amount.
type TransactionResponse struct {
	Transaction   ledger.Transaction `json:"transaction"`
	DisplayAmount string             `json:"displayAmount"`
	CreatedAt     *time.Time         `json:"createdAt,omitempty"`
}

// NewTransactionResponse builds a TransactionResponse for a transaction that was just created.
func (f Formatter) NewTransactionResponse(tx ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		Transaction:   tx,
		DisplayAmount: f.Amount(tx.Amount),
	}
}

// NewStoredTransactionResponse builds a TransactionResponse for a stored transaction.
func (f Formatter) NewStoredTransactionResponse(st model.StoredTransaction) TransactionResponse {
	resp := f.NewTransactionResponse(st.Transaction)
	if !st.CreatedAt.IsZero() {
		createdAt := st.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// NewTransactionListResponse converts stored transactions, always returning a non-nil slice.
func (f Formatter) NewTransactionListResponse(stored []model.StoredTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(stored))
	for _, st := range stored {
		out = append(out, f.NewStoredTransactionResponse(st))
	}
	return out
}

// ImpactResponse is returned by the transaction impact endpoint.
type ImpactResponse struct {
	Transaction ledger.Transaction  `json:"transaction"`
	Impact      ledger.ImpactVector `json:"impact"`
	Display     ImpactDisplay       `json:"display"`
}

// NewImpactResponse builds an ImpactResponse.
func (f Formatter) NewImpactResponse(ti model.TransactionImpact) ImpactResponse {
	impact := ti.Impact
	if impact.AccountDeltas == nil {
		impact.AccountDeltas = map[string]int64{}
	}
	return ImpactResponse{
		Transaction: ti.Transaction,
		Impact:      impact,
		Display:     f.Impact(impact),
	}
}

// TypeSummaryResponse is one group of the summary endpoint.
// DisplayTotal is a raw face-value sum and not a financial total.
type TypeSummaryResponse struct {
	Count        int                  `json:"count"`
	TotalAmount  int64                `json:"totalAmount"`
	DisplayTotal string               `json:"displayTotal"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// NewSummaryResponse converts a summary keyed by transaction type.
func (f Formatter) NewSummaryResponse(summary map[ledger.TransactionType]ledger.TypeSummary) map[ledger.TransactionType]TypeSummaryResponse {
	out := make(map[ledger.TransactionType]TypeSummaryResponse, len(summary))
	for t, s := range summary {
		out[t] = TypeSummaryResponse{
			Count:        s.Count,
			TotalAmount:  s.TotalAmount,
			DisplayTotal: f.Amount(s.TotalAmount),
			Transactions: s.Transactions,
		}
	}
	return out
}

// SnapshotResponse is returned by the latest snapshot endpoint.
type SnapshotResponse struct {
	model.MetricsSnapshot
	Display MetricsDisplay `json:"display"`
}

// NewSnapshotResponse builds a SnapshotResponse.
func (f Formatter) NewSnapshotResponse(s model.MetricsSnapshot) SnapshotResponse {
	return SnapshotResponse{
		MetricsSnapshot: s,
		Display:         f.Metrics(s.Metrics),
	}
}
