package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
)

func newTypesCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered transaction types and their accounting semantics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd, ledger.NewRegistry().Descriptors())
		},
	}
}
