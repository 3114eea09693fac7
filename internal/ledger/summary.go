package ledger

// TypeSummary counts the transactions of one type and sums their face values.
//
// TotalAmount is a raw sum of Amount with no sign or ledger semantics applied. It answers
// "N transactions of type X totalling Y" and must not be read as a financial total; use
// AggregateMetrics for that.
type TypeSummary struct {
	Count        int           `json:"count"`
	TotalAmount  int64         `json:"totalAmount"`
	Transactions []Transaction `json:"transactions"`
}

// SummaryByType groups txs by type. Every type present in txs gets an entry, including
// types the registry does not know; the transactions in each group keep their input order.
func SummaryByType(txs []Transaction) map[TransactionType]TypeSummary {
	seen := make(map[TransactionType]struct{})
	var order []TransactionType
	for _, tx := range txs {
		if _, ok := seen[tx.Type]; !ok {
			seen[tx.Type] = struct{}{}
			order = append(order, tx.Type)
		}
	}

	out := make(map[TransactionType]TypeSummary, len(order))
	for _, t := range order {
		group := FilterByType(txs, t)
		var total int64
		for _, tx := range group {
			total += tx.Amount
		}
		out[t] = TypeSummary{Count: len(group), TotalAmount: total, Transactions: group}
	}
	return out
}
