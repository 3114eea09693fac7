package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

type impactEntry struct {
	Index       int                    `json:"index"`
	Transaction ledger.Transaction     `json:"transaction"`
	Impact      ledger.ImpactVector    `json:"impact"`
	Display     response.ImpactDisplay `json:"display"`
}

type impactOutput struct {
	Impacts []impactEntry             `json:"impacts"`
	Errors  []ledger.TransactionError `json:"errors"`
}

func newImpactCmd(opts *options) *cobra.Command {
	var (
		file string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Print the impact vector of every transaction in a batch",
		Long: `Print the per-transaction effect on cash flow, income, expense, assets,
liabilities and account balances.

Example:
  ledgerctl impact -f batch.json --mode collect-errors`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := ledger.ParseMode(mode)
			if err != nil {
				return err
			}

			batch, err := readBatch(cmd, file)
			if err != nil {
				return err
			}

			calculator := opts.aggregator().Calculator()
			formatter := opts.formatter()
			out := impactOutput{
				Impacts: make([]impactEntry, 0, len(batch.Transactions)),
				Errors:  []ledger.TransactionError{},
			}

			var failed []ledger.TransactionError
			for i, tx := range batch.Transactions {
				v, err := calculator.Compute(tx)
				if err != nil {
					failed = append(failed, ledger.TransactionError{Index: i, TransactionID: tx.ID, Err: err})
					continue
				}
				if v.AccountDeltas == nil {
					v.AccountDeltas = map[string]int64{}
				}
				out.Impacts = append(out.Impacts, impactEntry{
					Index:       batch.Position(i),
					Transaction: tx,
					Impact:      v,
					Display:     formatter.Impact(v),
				})
			}

			out.Errors = batch.Merge(failed)
			if m == ledger.ModeFailFast && len(out.Errors) > 0 {
				return out.Errors[0]
			}

			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "transaction batch (.json, .yaml or - for stdin)")
	cmd.Flags().StringVar(&mode, "mode", string(ledger.ModeFailFast), "fail-fast or collect-errors")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
