package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count and total the transactions of a batch by type",
		Long: `Group a batch by transaction type. Totals are raw face-value sums and are
not financial totals; use "ledgerctl metrics" for those.

Records that cannot be decoded are reported on stderr and left out.

Example:
  ledgerctl summary -f batch.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batch, err := readBatch(cmd, file)
			if err != nil {
				return err
			}

			for _, rejected := range batch.Rejected {
				opts.log.Warn().
					Int("index", rejected.Index).
					Str("transaction_id", rejected.TransactionID).
					Err(rejected.Err).
					Msg("transaction skipped")
			}

			summary := ledger.SummaryByType(batch.Transactions)
			return writeJSON(cmd, opts.formatter().NewSummaryResponse(summary))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "transaction batch (.json, .yaml or - for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
