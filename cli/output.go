package cli

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the checked text is profane
	ExitCommandError = 2 // invalid arguments, store unavailable
)

// ExitError carries the exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if goerrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writeTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()
}

func paint(opts *RootOptions, style color.Style, text string) string {
	if !opts.Colours {
		return text
	}
	return style.Render(text)
}

// openDB opens the store read-only unless write is set.
// A read-only open works next to a running server.
func openDB(path string, write bool) (*badger.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "store not found", err)
	}
	options := badger.DefaultOptions(path).WithLogger(nil)
	if !write {
		options = options.WithReadOnly(true).WithBypassLockGuard(true)
	}
	db, err := badger.Open(options)
	if err != nil {
		if write && strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, WrapExitError(ExitCommandError, "store is in use, stop the server first", err)
		}
		return nil, WrapExitError(ExitCommandError, "cannot open store", err)
	}
	return db, nil
}
