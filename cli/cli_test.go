package cli

import (
	"bytes"
	"encoding/json"
	"firechat/repositories"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig(dbPath string) Config {
	return Config{
		BadgerFilepath:   dbPath,
		CharReplacement:  "*",
		ModerationPolicy: "strict",
		LogLevel:         "ERROR",
		Colours:          false,
	}
}

// seed writes two messages, one dead letter and one operator word, then closes the store.
func seed(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	req := require.New(t)
	path := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	req.NoError(err)

	messages, err := repositories.NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	first, err := messages.Append(repositories.DiskMessage{Text: "first", AuthorID: "u1", AuthorDisplayName: "Alice"})
	req.NoError(err)
	failed, err := messages.Append(repositories.DiskMessage{Text: "second", AuthorID: "u2", AuthorDisplayName: "Bob"})
	req.NoError(err)

	outbox := repositories.NewOutboxRepository(db, slog.Default())
	req.NoError(outbox.Ack(first.ID))
	req.NoError(outbox.DeadLetter(failed.ID, 5, "write-back failed"))

	_, err = repositories.NewLexiconRepository(db).Add("heck")
	req.NoError(err)

	req.NoError(db.Close())
	return path, failed.ID
}

func execute(config Config, args ...string) (string, error) {
	cmd := NewRootCommand(config)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(testConfig(""))
	for _, name := range []string{"check", "lexicon", "messages", "deadletters", "requeue", "inspect"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(testConfig(t.TempDir()), "check", "--format", "yaml", "hello")
	require.Error(t, err)
	require.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheck_EmbeddedLexiconOnly(t *testing.T) {
	req := require.New(t)
	config := testConfig(filepath.Join(t.TempDir(), "missing"))

	out, err := execute(config, "--format", "json", "check", "what", "a", "bastard")
	req.Error(err)
	req.Equal(ExitFailure, GetExitCode(err))

	var result checkResult
	req.NoError(json.Unmarshal([]byte(out), &result))
	req.True(result.Profane)
	req.Equal("what a *******", result.Cleaned)
	req.Equal([]string{"bastard"}, result.Words)

	out, err = execute(config, "check", "what the heck")
	req.NoError(err)
	req.Contains(out, "status:  clean")
	req.Contains(out, "cleaned: what the heck")
}

func TestCheck_WithOperatorWords(t *testing.T) {
	req := require.New(t)
	path, _ := seed(t)

	out, err := execute(testConfig(path), "check", "what the heck")
	req.Error(err)
	req.Equal(ExitFailure, GetExitCode(err))
	req.Contains(out, "status:  profane")
	req.Contains(out, "cleaned: what the ****")
	req.Contains(out, "words:   heck")
}

func TestCheck_InvalidReplacement(t *testing.T) {
	config := testConfig(t.TempDir())
	config.CharReplacement = "**"
	_, err := execute(config, "check", "hello")
	require.Error(t, err)
	require.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLexicon_AddListRemove(t *testing.T) {
	req := require.New(t)
	path, _ := seed(t)
	config := testConfig(path)

	out, err := execute(config, "lexicon", "add", "Darn", "  ", "gosh")
	req.NoError(err)
	req.Contains(out, "2 word(s) added")

	out, err = execute(config, "--format", "json", "lexicon", "list")
	req.NoError(err)
	var words []string
	req.NoError(json.Unmarshal([]byte(out), &words))
	req.Equal([]string{"darn", "gosh", "heck"}, words)

	_, err = execute(config, "lexicon", "remove", "heck")
	req.NoError(err)

	out, err = execute(config, "lexicon", "list")
	req.NoError(err)
	req.Equal("darn\ngosh\n", out)
}

func TestMessages(t *testing.T) {
	req := require.New(t)
	path, _ := seed(t)
	config := testConfig(path)

	out, err := execute(config, "--format", "json", "messages", "--limit", "1")
	req.NoError(err)
	var rows []messageRow
	req.NoError(json.Unmarshal([]byte(out), &rows))
	req.Len(rows, 1)
	req.Equal("second", rows[0].Text)
	req.Equal("Bob", rows[0].Author)

	out, err = execute(config, "messages")
	req.NoError(err)
	req.Contains(out, "first")
	req.Contains(out, "Alice")

	_, err = execute(config, "messages", "--limit", "0")
	req.Equal(ExitCommandError, GetExitCode(err))
}

func TestDeadLettersAndRequeue(t *testing.T) {
	req := require.New(t)
	path, failedID := seed(t)
	config := testConfig(path)

	out, err := execute(config, "--format", "json", "deadletters")
	req.NoError(err)
	var rows []deadLetterRow
	req.NoError(json.Unmarshal([]byte(out), &rows))
	req.Len(rows, 1)
	req.Equal(failedID.String(), rows[0].MessageID)
	req.Equal(5, rows[0].Attempts)
	req.Equal("write-back failed", rows[0].Reason)

	out, err = execute(config, "requeue", failedID.String())
	req.NoError(err)
	req.Contains(out, "requeued")

	out, err = execute(config, "deadletters")
	req.NoError(err)
	req.Contains(out, "no dead letters")

	out, err = execute(config, "--format", "json", "inspect", "--prefix", "pending:")
	req.NoError(err)
	var records []repositories.Record
	req.NoError(json.Unmarshal([]byte(out), &records))
	req.Len(records, 1)
	req.Equal("pending:"+failedID.String(), records[0].Key)
	req.Equal("attempts: 0", records[0].Detail)
}

func TestRequeue_Errors(t *testing.T) {
	req := require.New(t)
	path, _ := seed(t)
	config := testConfig(path)

	_, err := execute(config, "requeue", "not-a-uuid")
	req.Equal(ExitCommandError, GetExitCode(err))

	_, err = execute(config, "requeue", uuid.NewString())
	req.Error(err)
	req.Contains(err.Error(), "no dead letter")
}

func TestInspect(t *testing.T) {
	req := require.New(t)
	path, _ := seed(t)

	out, err := execute(testConfig(path), "inspect")
	req.NoError(err)
	req.Contains(out, "MESSAGE")
	req.Contains(out, "Alice: first")

	out, err = execute(testConfig(path), "inspect", "-p", "lexicon:")
	req.NoError(err)
	req.Contains(out, "LEXICON")
	req.NotContains(out, "MESSAGE")
}

func TestMissingStore(t *testing.T) {
	_, err := execute(testConfig(filepath.Join(t.TempDir(), "missing")), "messages")
	require.Error(t, err)
	require.Equal(t, ExitCommandError, GetExitCode(err))
}
