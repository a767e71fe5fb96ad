package cli

import (
	goerrors "errors"
	"firechat/errors"
	"firechat/repositories"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type messageRow struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type deadLetterRow struct {
	MessageID string    `json:"messageId"`
	Attempts  int       `json:"attempts"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func NewMessagesCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Print the most recent messages, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return NewExitError(ExitCommandError, "--limit must be positive")
			}
			db, err := openDB(opts.BadgerFilepath, false)
			if err != nil {
				return err
			}
			defer db.Close()

			repository, err := repositories.NewMessageRepository(db, opts.log, nil)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot read messages", err)
			}
			messages, err := repository.Recent(limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot read messages", err)
			}

			rows := lo.Map(messages, func(m repositories.DiskMessage, _ int) messageRow {
				return messageRow{ID: m.ID.String(), Author: m.AuthorDisplayName, Text: m.Text, CreatedAt: m.CreatedAt}
			})
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			writeTable(cmd.OutOrStdout(), []string{"Created", "Id", "Author", "Text"},
				lo.Map(rows, func(r messageRow, _ int) []string {
					return []string{r.CreatedAt.UTC().Format(time.RFC3339), r.ID, r.Author, r.Text}
				}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of messages")
	return cmd
}

func NewDeadLettersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deadletters",
		Short: "List the messages whose triggers gave up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(opts.BadgerFilepath, false)
			if err != nil {
				return err
			}
			defer db.Close()

			letters, err := repositories.NewOutboxRepository(db, opts.log).DeadLetters()
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot read dead letters", err)
			}

			rows := lo.Map(letters, func(d repositories.DeadLetter, _ int) deadLetterRow {
				return deadLetterRow{MessageID: d.MessageID.String(), Attempts: d.Attempts, Reason: d.Reason, At: d.At}
			})
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), paint(opts, color.New(color.FgGreen), "no dead letters"))
				return nil
			}
			writeTable(cmd.OutOrStdout(), []string{"At", "Message", "Attempts", "Reason"},
				lo.Map(rows, func(r deadLetterRow, _ int) []string {
					return []string{r.At.UTC().Format(time.RFC3339), r.MessageID, strconv.Itoa(r.Attempts), r.Reason}
				}))
			return nil
		},
	}
}

// NewRequeueCommand moves dead letters back to the outbox. They are replayed on the next server start.
func NewRequeueCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <message-id>...",
		Short: "Give dead letters a fresh attempt budget",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("invalid message id %q", arg), err)
				}
				ids = append(ids, id)
			}

			db, err := openDB(opts.BadgerFilepath, true)
			if err != nil {
				return err
			}
			defer db.Close()

			outbox := repositories.NewOutboxRepository(db, opts.log)
			for _, id := range ids {
				err := outbox.Requeue(id)
				if goerrors.Is(err, errors.ErrMessageNotFound) {
					return NewExitError(ExitCommandError, fmt.Sprintf("no dead letter for %s", id))
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "requeue failed", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s requeued\n", id)
			}
			return nil
		},
	}
}
