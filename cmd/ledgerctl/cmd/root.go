// Package cmd provides the commands of ledgerctl, an offline tool that runs the ledger
// calculations over transaction batches stored in JSON or YAML files.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/logger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/version"
)

// options holds the flags shared by every command.
type options struct {
	debug    bool
	exponent int32
	log      zerolog.Logger
}

func (o *options) formatter() response.Formatter {
	return response.NewFormatter(o.exponent)
}

func (o *options) aggregator() *ledger.Aggregator {
	return ledger.NewAggregator(ledger.NewCalculator(ledger.NewRegistry()))
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Run ledger calculations over transaction batches",
		Long: `ledgerctl computes the financial impact of transaction batches without a server
or database. Batches are JSON arrays or YAML sequences of transactions in the
same shape the HTTP API accepts.

Example:
  ledgerctl metrics -f batch.json
  ledgerctl metrics -f batch.yaml --mode collect-errors --shards 8
  ledgerctl summary -f batch.json
  ledgerctl impact -f batch.json
  ledgerctl types`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "info"
			if opts.debug {
				level = "debug"
			}
			opts.log = logger.NewWithWriter(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}, level)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Int32Var(&opts.exponent, "exponent", 2, "minor-unit exponent used for display amounts")

	rootCmd.AddCommand(
		newMetricsCmd(opts),
		newSummaryCmd(opts),
		newImpactCmd(opts),
		newTypesCmd(opts),
	)

	return rootCmd
}

// Execute runs ledgerctl with the process arguments.
func Execute() error {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}
