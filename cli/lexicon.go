package cli

import (
	"firechat/repositories"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLexiconCommand manages the operator words stored next to the messages.
// The server picks them up on its next start.
func NewLexiconCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage the operator censored words",
	}
	cmd.AddCommand(newLexiconListCommand(opts))
	cmd.AddCommand(newLexiconAddCommand(opts))
	cmd.AddCommand(newLexiconRemoveCommand(opts))
	return cmd
}

func newLexiconListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the operator words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.BadgerFilepath, false)
			if err != nil {
				return err
			}
			defer db.Close()

			words, err := repositories.NewLexiconRepository(db).All()
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot list words", err)
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				if words == nil {
					words = []string{}
				}
				return writeJSON(out, words)
			}
			for _, w := range words {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}
}

func newLexiconAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <word>...",
		Short: "Add operator words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.BadgerFilepath, true)
			if err != nil {
				return err
			}
			defer db.Close()

			added, err := repositories.NewLexiconRepository(db).Add(args...)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot add words", err)
			}
			opts.log.Info("Operator words added", "count", added)
			fmt.Fprintf(cmd.OutOrStdout(), "%d word(s) added\n", added)
			return nil
		},
	}
}

func newLexiconRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <word>...",
		Short: "Remove operator words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.BadgerFilepath, true)
			if err != nil {
				return err
			}
			defer db.Close()

			repository := repositories.NewLexiconRepository(db)
			for _, w := range args {
				if err := repository.Remove(w); err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("cannot remove %q", w), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d word(s) removed\n", len(args))
			return nil
		},
	}
}
