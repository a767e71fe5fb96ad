package cli

import (
	"firechat/internal"
	"firechat/lexicon"
	"firechat/moderation"
	"firechat/repositories"
	"firechat/runtime"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

type checkResult struct {
	Profane bool     `json:"profane"`
	Cleaned string   `json:"cleaned"`
	Words   []string `json:"words,omitempty"`
}

// NewCheckCommand evaluates a text the way the moderation trigger would, without storing anything.
// The exit code is ExitFailure when the text is profane.
func NewCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <text>...",
		Short: "Dry run the moderation filter on a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := buildFilter(opts)
			if err != nil {
				return err
			}

			verdict, err := moderation.Evaluate(filter, strings.Join(args, " "))
			if err != nil {
				return WrapExitError(ExitCommandError, "evaluation failed", err)
			}
			result := checkResult{Profane: verdict.IsProfane, Cleaned: verdict.Cleaned, Words: verdict.Words}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				status := paint(opts, color.New(color.FgGreen), "clean")
				if result.Profane {
					status = paint(opts, color.New(color.FgRed, color.OpBold), "profane")
				}
				fmt.Fprintf(out, "status:  %s\n", status)
				fmt.Fprintf(out, "cleaned: %s\n", result.Cleaned)
				if len(result.Words) > 0 {
					fmt.Fprintf(out, "words:   %s\n", strings.Join(result.Words, ", "))
				}
			}

			if result.Profane {
				return &ExitError{Code: ExitFailure}
			}
			return nil
		},
	}
}

// buildFilter merges the embedded word lists with the operator words of the store, if there is one.
func buildFilter(opts *RootOptions) (*moderation.Moderator, error) {
	charReplacement, err := internal.CharacterRune(opts.CharReplacement)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	policy, err := moderation.ParsePolicy(opts.ModerationPolicy)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	var extra repositories.ILexiconRepository
	if _, statErr := os.Stat(opts.BadgerFilepath); statErr == nil {
		db, err := openDB(opts.BadgerFilepath, false)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		extra = repositories.NewLexiconRepository(db)
	}

	moderator, err := runtime.PrepareModerator(lexicon.NewEmbeddedLoader(), extra, charReplacement, policy, opts.log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot build the filter", err)
	}
	return moderator, nil
}
