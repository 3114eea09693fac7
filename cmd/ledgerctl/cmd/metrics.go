package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
)

func newMetricsCmd(opts *options) *cobra.Command {
	var (
		file   string
		mode   string
		shards int
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Aggregate a batch into income, expense, balance sheet and account totals",
		Long: `Aggregate a transaction batch.

In fail-fast mode (the default) the first invalid transaction aborts the run.
In collect-errors mode invalid transactions are skipped and listed under "errors".

Example:
  ledgerctl metrics -f batch.json --mode collect-errors --shards 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := ledger.ParseMode(mode)
			if err != nil {
				return err
			}

			batch, err := readBatch(cmd, file)
			if err != nil {
				return err
			}
			if batch.Size() == 0 {
				return apperrors.ErrEmptyBatch
			}

			aggregator := opts.aggregator()

			if m == ledger.ModeFailFast && len(batch.Rejected) > 0 {
				return batch.EarliestFailure(func(prefix []ledger.Transaction) ([]ledger.TransactionError, error) {
					_, failed, err := aggregator.Aggregate(prefix, ledger.ModeCollectErrors)
					return failed, err
				})
			}

			metrics, failed, err := aggregator.AggregateParallel(cmd.Context(), batch.Transactions, m, shards)
			if err != nil {
				return err
			}

			errs := batch.Merge(failed)
			if len(errs) > 0 {
				opts.log.Warn().Int("skipped", len(errs)).Int("total", batch.Size()).Msg("transactions skipped")
			}
			opts.log.Debug().Int("shards", shards).Int("transactions", metrics.TransactionCount).Msg("batch aggregated")

			return writeJSON(cmd, opts.formatter().NewMetricsResponse(model.MetricsResult{
				Mode:    m,
				Metrics: metrics,
				Errors:  errs,
			}))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "transaction batch (.json, .yaml or - for stdin)")
	cmd.Flags().StringVar(&mode, "mode", string(ledger.ModeFailFast), "fail-fast or collect-errors")
	cmd.Flags().IntVar(&shards, "shards", 4, "number of goroutines used for aggregation")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
