package repositories

import (
	"firechat/errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClock returns the given instants in order, then repeats the last one.
func fakeClock(instants ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at := instants[i]
		if i < len(instants)-1 {
			i++
		}
		return at
	}
}

func newMessage(author, text string) DiskMessage {
	return DiskMessage{
		Text:              text,
		AuthorID:          author,
		AuthorDisplayName: author,
		AuthorPhotoURL:    "https://example.com/" + author + ".png",
		AuthorEmail:       author + "@example.com",
	}
}

func Test_Append_Assigns_ID_And_Time(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	repository, err := NewMessageRepository(openDB(t), slog.Default(), fakeClock(at))
	req.NoError(err)

	stored, err := repository.Append(newMessage("alice", "hello"))
	req.NoError(err)
	req.NotEqual(uuid.Nil, stored.ID)
	req.Equal(at, stored.CreatedAt)

	fetched, err := repository.Get(stored.ID)
	req.NoError(err)
	req.Equal(stored, fetched)
}

func Test_Recent_Is_Ordered_And_Limited(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	repository, err := NewMessageRepository(openDB(t), slog.Default(),
		fakeClock(at, at.Add(time.Minute), at.Add(2*time.Minute)))
	req.NoError(err)

	for _, author := range []string{"Alice", "Bob", "Clara"} {
		_, err = repository.Append(newMessage(author, "this message will self destruct in 5 seconds"))
		req.NoError(err)
	}

	// When fetching all messages
	messages, err := repository.Recent(25)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("Alice", messages[0].AuthorID)
	req.Equal("Clara", messages[2].AuthorID)

	// When fetching the last two only
	messages, err = repository.Recent(2)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("Bob", messages[0].AuthorID)
	req.Equal("Clara", messages[1].AuthorID)

	messages, err = repository.Recent(0)
	req.NoError(err)
	req.Empty(messages)
}

func Test_CreatedAt_Never_Goes_Backwards(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	// Given a clock jumping back in time
	repository, err := NewMessageRepository(openDB(t), slog.Default(),
		fakeClock(at, at.Add(-time.Hour)))
	req.NoError(err)

	first, err := repository.Append(newMessage("alice", "first"))
	req.NoError(err)
	second, err := repository.Append(newMessage("bob", "second"))
	req.NoError(err)

	// Then insertion order is kept
	req.True(second.CreatedAt.After(first.CreatedAt))
	messages, err := repository.Recent(10)
	req.NoError(err)
	req.Equal([]uuid.UUID{first.ID, second.ID}, []uuid.UUID{messages[0].ID, messages[1].ID})
}

func Test_Same_Instant_Keeps_Insertion_Order(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	// Given a clock that never moves
	repository, err := NewMessageRepository(openDB(t), slog.Default(), fakeClock(at))
	req.NoError(err)

	var appended []uuid.UUID
	for i := 0; i < 50; i++ {
		message, err := repository.Append(newMessage("alice", fmt.Sprintf("message %d", i)))
		req.NoError(err)
		appended = append(appended, message.ID)
	}

	// Then the feed is in insertion order
	messages, err := repository.Recent(50)
	req.NoError(err)
	req.Equal(appended, lo.Map(messages, func(m DiskMessage, _ int) uuid.UUID { return m.ID }))
	for i := 1; i < len(messages); i++ {
		req.True(messages[i].CreatedAt.After(messages[i-1].CreatedAt))
	}
}

func Test_CreatedAt_Survives_Restart(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	at := time.Now().UTC()

	repository, err := NewMessageRepository(db, slog.Default(), fakeClock(at))
	req.NoError(err)
	first, err := repository.Append(newMessage("alice", "first"))
	req.NoError(err)

	// Given a new repository on the same data with an earlier clock
	repository, err = NewMessageRepository(db, slog.Default(), fakeClock(at.Add(-time.Minute)))
	req.NoError(err)
	second, err := repository.Append(newMessage("bob", "second"))
	req.NoError(err)

	req.True(second.CreatedAt.After(first.CreatedAt))
	messages, err := repository.Recent(10)
	req.NoError(err)
	req.Equal(second.ID, messages[1].ID)
}

func Test_UpdateText_Only_Changes_Text(t *testing.T) {
	req := require.New(t)
	repository, err := NewMessageRepository(openDB(t), slog.Default(), nil)
	req.NoError(err)

	stored, err := repository.Append(newMessage("alice", "you are a badword today"))
	req.NoError(err)

	req.NoError(repository.UpdateText(stored.ID, "you are a ******* today"))

	fetched, err := repository.Get(stored.ID)
	req.NoError(err)
	expected := stored
	expected.Text = "you are a ******* today"
	req.Equal(expected, fetched)
}

func Test_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repository, err := NewMessageRepository(openDB(t), slog.Default(), nil)
	req.NoError(err)

	_, err = repository.Get(uuid.New())
	req.ErrorIs(err, errors.ErrMessageNotFound)
	req.ErrorIs(repository.UpdateText(uuid.New(), "x"), errors.ErrMessageNotFound)
}
