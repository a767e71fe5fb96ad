// Package cli implements firechatctl, the operator tool working directly on
// the store: lexicon management, moderation dry runs and dead letter handling.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

// Config is read from the same environment as the server.
type Config struct {
	BadgerFilepath   string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	CharReplacement  string `envconfig:"MODERATION_CHARACTER_REPLACEMENT" default:"*"`
	ModerationPolicy string `envconfig:"MODERATION_POLICY" default:"strict"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"WARN"`
	// FIRECHAT_COLOURS enables colorized output
	Colours bool `envconfig:"FIRECHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config
	Format string // "json" | "text"
	log    *slog.Logger
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of firechatctl.
func NewRootCommand(config Config) *cobra.Command {
	opts := &RootOptions{Config: config}

	cmd := &cobra.Command{
		Use:   "firechatctl",
		Short: "Operate a firechat store",
		Long: `Operate a firechat store.

Commands changing the store (lexicon add/remove, requeue) need the server to be stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.log = logs.GetLoggerFromString(opts.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.BadgerFilepath, "db", config.BadgerFilepath, "path to the badger store")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Colours, "color", config.Colours, "colorize text output")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewLexiconCommand(opts))
	cmd.AddCommand(NewMessagesCommand(opts))
	cmd.AddCommand(NewDeadLettersCommand(opts))
	cmd.AddCommand(NewRequeueCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}
