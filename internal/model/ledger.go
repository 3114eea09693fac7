package model

import (
	"time"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

// TransactionFilter narrows transaction queries.
// A zero StartDate or EndDate leaves that side of the range open; an empty Types matches every type.
type TransactionFilter struct {
	Types     []ledger.TransactionType
	StartDate time.Time
	EndDate   time.Time
}

// StoredTransaction is a transaction as persisted, with its insertion timestamp.
type StoredTransaction struct {
	ledger.Transaction
	CreatedAt time.Time
}

// MetricsResult is the outcome of aggregating a batch of transactions.
// Errors is only populated in collect-errors mode.
type MetricsResult struct {
	Mode    ledger.Mode               `json:"mode"`
	Metrics ledger.AggregateMetrics   `json:"metrics"`
	Errors  []ledger.TransactionError `json:"errors"`
}

// ImportResult reports how many transactions an import persisted and which ones it rejected.
type ImportResult struct {
	Imported int                       `json:"imported"`
	Failed   []ledger.TransactionError `json:"failed"`
}

// TransactionImpact pairs a stored transaction with the impact vector it produces.
type TransactionImpact struct {
	Transaction ledger.Transaction  `json:"transaction"`
	Impact      ledger.ImpactVector `json:"impact"`
}

// MetricsSnapshot is a point-in-time aggregation over the whole transaction store,
// recorded by the scheduled snapshot job.
type MetricsSnapshot struct {
	ID               string                  `json:"id"`
	TakenAt          time.Time               `json:"takenAt"`
	Metrics          ledger.AggregateMetrics `json:"metrics"`
	TransactionCount int                     `json:"transactionCount"`
	SkippedCount     int                     `json:"skippedCount"`
}
