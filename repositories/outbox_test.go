package repositories

import (
	"firechat/errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Append_Creates_Pending_Entry(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	messages, err := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	outbox := NewOutboxRepository(db, slog.Default())

	stored, err := messages.Append(newMessage("alice", "hello"))
	req.NoError(err)

	pending, err := outbox.Pending()
	req.NoError(err)
	req.Len(pending, 1)
	req.Equal(stored, pending[0].Message)
	req.Equal(0, pending[0].Attempts)
}

func Test_Attempt_And_Ack(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	messages, err := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	outbox := NewOutboxRepository(db, slog.Default())

	stored, err := messages.Append(newMessage("alice", "hello"))
	req.NoError(err)

	attempts, err := outbox.Attempt(stored.ID)
	req.NoError(err)
	req.Equal(1, attempts)
	attempts, err = outbox.Attempt(stored.ID)
	req.NoError(err)
	req.Equal(2, attempts)

	req.NoError(outbox.Ack(stored.ID))
	pending, err := outbox.Pending()
	req.NoError(err)
	req.Empty(pending)

	_, err = outbox.Attempt(stored.ID)
	req.ErrorIs(err, errors.ErrNotPending)
}

func Test_DeadLetter_And_Requeue(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	messages, err := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	outbox := NewOutboxRepository(db, slog.Default())

	stored, err := messages.Append(newMessage("alice", "hello"))
	req.NoError(err)

	// When the retry budget is exhausted
	req.NoError(outbox.DeadLetter(stored.ID, 5, "store unavailable"))

	// Then the entry moves to the dead letters
	pending, err := outbox.Pending()
	req.NoError(err)
	req.Empty(pending)
	letters, err := outbox.DeadLetters()
	req.NoError(err)
	req.Len(letters, 1)
	req.Equal(stored.ID, letters[0].MessageID)
	req.Equal(5, letters[0].Attempts)
	req.Equal("store unavailable", letters[0].Reason)

	// When an operator requeues it
	req.NoError(outbox.Requeue(stored.ID))
	pending, err = outbox.Pending()
	req.NoError(err)
	req.Len(pending, 1)
	letters, err = outbox.DeadLetters()
	req.NoError(err)
	req.Empty(letters)

	req.ErrorIs(outbox.Requeue(uuid.New()), errors.ErrMessageNotFound)
}
