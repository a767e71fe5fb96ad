package cli

import (
	"firechat/repositories"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// NewInspectCommand dumps raw store records, decoded by kind.
func NewInspectCommand(opts *RootOptions) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dump store records by key prefix",
		Long: `Dump store records by key prefix.

Known prefixes: msg:, msgid:, pending:, deadletter:, user:, revoked:, lexicon:.
An empty prefix scans the whole store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.BadgerFilepath, false)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := repositories.Scan(db, prefix)
			if err != nil {
				return WrapExitError(ExitCommandError, "scan failed", err)
			}

			if opts.Format == "json" {
				if records == nil {
					records = []repositories.Record{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}
			writeTable(cmd.OutOrStdout(), []string{"Key", "Type", "Detail"},
				lo.Map(records, func(r repositories.Record, _ int) []string {
					return []string{r.Key, r.Kind, r.Detail}
				}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "msg:", "key prefix to scan")
	return cmd
}
