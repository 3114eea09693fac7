package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
)

// Mode selects how Aggregate reacts to a transaction the Calculator rejects.
type Mode string

const (
	// ModeFailFast aborts on the first error and returns it unchanged.
	ModeFailFast Mode = "fail-fast"
	// ModeCollectErrors skips rejected transactions and reports them alongside partial metrics.
	ModeCollectErrors Mode = "collect-errors"
)

// ParseMode parses an aggregation mode. The empty string selects ModeFailFast.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFailFast:
		return ModeFailFast, nil
	case ModeCollectErrors:
		return ModeCollectErrors, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAggregationMode, s)
}

// AggregateMetrics is the sum of ImpactVectors over a batch.
//
// NetWorth is always TotalAssets - TotalLiabilities. NetCashFlow is the sum of the
// vectors' cash flows; for batches without loans it equals TotalIncome - TotalExpense.
type AggregateMetrics struct {
	TotalIncome      int64            `json:"totalIncome"`
	TotalExpense     int64            `json:"totalExpense"`
	NetCashFlow      int64            `json:"netCashFlow"`
	TotalAssets      int64            `json:"totalAssets"`
	TotalLiabilities int64            `json:"totalLiabilities"`
	NetWorth         int64            `json:"netWorth"`
	AccountBalances  map[string]int64 `json:"accountBalances"`
	TransactionCount int              `json:"transactionCount"`
}

// EmptyMetrics returns the identity element of Add and Merge.
func EmptyMetrics() AggregateMetrics {
	return AggregateMetrics{AccountBalances: map[string]int64{}}
}

// Add returns m with v folded in. m is left untouched.
func (m AggregateMetrics) Add(v ImpactVector) AggregateMetrics {
	balances := make(map[string]int64, len(m.AccountBalances)+len(v.AccountDeltas))
	for account, balance := range m.AccountBalances {
		balances[account] = balance
	}
	for account, delta := range v.AccountDeltas {
		balances[account] += delta
	}

	out := AggregateMetrics{
		TotalIncome:      m.TotalIncome + v.Income,
		TotalExpense:     m.TotalExpense + v.Expense,
		NetCashFlow:      m.NetCashFlow + v.CashFlow,
		TotalAssets:      m.TotalAssets + v.Assets,
		TotalLiabilities: m.TotalLiabilities + v.Liabilities,
		AccountBalances:  balances,
		TransactionCount: m.TransactionCount + 1,
	}
	out.NetWorth = out.TotalAssets - out.TotalLiabilities
	return out
}

// Merge combines two partial results. It is commutative and associative, so metrics from
// independently aggregated shards, or from a prior run and newly arrived transactions,
// can be merged in any grouping.
func Merge(a, b AggregateMetrics) AggregateMetrics {
	balances := make(map[string]int64, len(a.AccountBalances)+len(b.AccountBalances))
	for account, balance := range a.AccountBalances {
		balances[account] = balance
	}
	for account, balance := range b.AccountBalances {
		balances[account] += balance
	}

	out := AggregateMetrics{
		TotalIncome:      a.TotalIncome + b.TotalIncome,
		TotalExpense:     a.TotalExpense + b.TotalExpense,
		NetCashFlow:      a.NetCashFlow + b.NetCashFlow,
		TotalAssets:      a.TotalAssets + b.TotalAssets,
		TotalLiabilities: a.TotalLiabilities + b.TotalLiabilities,
		AccountBalances:  balances,
		TransactionCount: a.TransactionCount + b.TransactionCount,
	}
	out.NetWorth = out.TotalAssets - out.TotalLiabilities
	return out
}

// fits reports whether m.Add(v) keeps every total, net worth and balance inside the int64 range.
func (m AggregateMetrics) fits(v ImpactVector) bool {
	_, okIncome := addExact(m.TotalIncome, v.Income)
	_, okExpense := addExact(m.TotalExpense, v.Expense)
	_, okCash := addExact(m.NetCashFlow, v.CashFlow)
	assets, okAssets := addExact(m.TotalAssets, v.Assets)
	liabilities, okLiabilities := addExact(m.TotalLiabilities, v.Liabilities)
	_, okNetWorth := subExact(assets, liabilities)
	if !okIncome || !okExpense || !okCash || !okAssets || !okLiabilities || !okNetWorth {
		return false
	}
	for account, delta := range v.AccountDeltas {
		if _, ok := addExact(m.AccountBalances[account], delta); !ok {
			return false
		}
	}
	return true
}

// asVector lets Merge reuse the Add overflow check.
func (m AggregateMetrics) asVector() ImpactVector {
	return ImpactVector{
		CashFlow:      m.NetCashFlow,
		Income:        m.TotalIncome,
		Expense:       m.TotalExpense,
		Assets:        m.TotalAssets,
		Liabilities:   m.TotalLiabilities,
		AccountDeltas: m.AccountBalances,
	}
}

func addExact(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func subExact(a, b int64) (int64, bool) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, false
	}
	return diff, true
}

// Aggregator folds transactions into AggregateMetrics.
type Aggregator struct {
	calculator *Calculator
}

// NewAggregator creates an Aggregator backed by calculator.
func NewAggregator(calculator *Calculator) *Aggregator {
	return &Aggregator{calculator: calculator}
}

// Calculator returns the calculator used for each transaction.
func (a *Aggregator) Calculator() *Calculator {
	return a.calculator
}

// Aggregate folds Compute over txs.
//
// In ModeFailFast the first Compute error is returned as is and the metrics are empty.
// In ModeCollectErrors failing transactions are skipped; the returned slice lists them in
// input order and the metrics cover only the accepted ones. The result does not depend on
// the order of txs.
//
// A transaction that would push a total or a balance outside the int64 range is rejected
// with an *AmountError like any other invalid transaction.
func (a *Aggregator) Aggregate(txs []Transaction, mode Mode) (AggregateMetrics, []TransactionError, error) {
	return a.aggregateRange(txs, 0, mode)
}

func (a *Aggregator) aggregateRange(txs []Transaction, offset int, mode Mode) (AggregateMetrics, []TransactionError, error) {
	if mode != ModeFailFast && mode != ModeCollectErrors {
		return AggregateMetrics{}, nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidAggregationMode, string(mode))
	}

	metrics := EmptyMetrics()
	var skipped []TransactionError

	for i, tx := range txs {
		v, err := a.calculator.Compute(tx)
		if err == nil && !metrics.fits(v) {
			err = &AmountError{TransactionID: tx.ID, Reason: "totals would overflow int64"}
		}
		if err != nil {
			if mode == ModeFailFast {
				return AggregateMetrics{}, nil, err
			}
			skipped = append(skipped, TransactionError{Index: offset + i, TransactionID: tx.ID, Err: err})
			continue
		}
		metrics = metrics.Add(v)
	}

	return metrics, skipped, nil
}

type shardResult struct {
	metrics AggregateMetrics
	skipped []TransactionError
	err     error
}

// AggregateParallel splits txs into at most shards contiguous shards, aggregates them on
// separate goroutines and merges the results. The metrics are identical to Aggregate.
//
// In ModeFailFast the reported error is the one Aggregate would have returned, i.e. the
// error of the earliest failing transaction, regardless of which shard finished first.
// Cancelling ctx stops shards that have not started yet. Shard totals that cannot be merged
// without leaving the int64 range fail the whole call with an *AmountError in either mode.
func (a *Aggregator) AggregateParallel(ctx context.Context, txs []Transaction, mode Mode, shards int) (AggregateMetrics, []TransactionError, error) {
	if shards <= 1 || len(txs) < 2 {
		return a.Aggregate(txs, mode)
	}
	if shards > len(txs) {
		shards = len(txs)
	}

	size := (len(txs) + shards - 1) / shards
	results := make([]shardResult, 0, shards)
	bounds := make([][2]int, 0, shards)
	for lo := 0; lo < len(txs); lo += size {
		hi := min(lo+size, len(txs))
		bounds = append(bounds, [2]int{lo, hi})
		results = append(results, shardResult{})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bounds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, skipped, err := a.aggregateRange(txs[b[0]:b[1]], b[0], mode)
			// Shard errors are kept per shard so the earliest one wins below.
			results[i] = shardResult{metrics: m, skipped: skipped, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AggregateMetrics{}, nil, err
	}

	total := EmptyMetrics()
	var skipped []TransactionError
	for _, r := range results {
		if r.err != nil {
			return AggregateMetrics{}, nil, r.err
		}
		if !total.fits(r.metrics.asVector()) {
			return AggregateMetrics{}, nil, &AmountError{Reason: "merged totals would overflow int64"}
		}
		total = Merge(total, r.metrics)
		skipped = append(skipped, r.skipped...)
	}
	return total, skipped, nil
}

// FilterByType returns the transactions whose type is in types, preserving their order.
func FilterByType(txs []Transaction, types ...TransactionType) []Transaction {
	wanted := make(map[TransactionType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	out := make([]Transaction, 0)
	for _, tx := range txs {
		if _, ok := wanted[tx.Type]; ok {
			out = append(out, tx)
		}
	}
	return out
}
