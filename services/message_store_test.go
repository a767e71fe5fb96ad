package services

import (
	"context"
	"firechat/domain"
	"firechat/domain/event"
	"firechat/errors"
	"firechat/mocks"
	"firechat/repositories"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var alice = domain.Principal{ID: "u1", DisplayName: "Alice", PhotoURL: "https://example.com/a.png", Email: "alice@example.com"}

func TestMessageStore_Append(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	created := make(chan event.MessageCreated, 1)
	changes := make(chan event.FeedChanged, 1)
	store := NewMessageStore(repository, created, changes, 100, slog.Default())

	id := uuid.New()
	at := time.Now().UTC()
	repository.EXPECT().
		Append(gomock.Any()).
		DoAndReturn(func(m repositories.DiskMessage) (repositories.DiskMessage, error) {
			req.Equal("hello", m.Text)
			req.Equal("u1", m.AuthorID)
			req.Equal("Alice", m.AuthorDisplayName)
			m.ID = id
			m.CreatedAt = at
			return m, nil
		})

	message, err := store.Append(context.Background(), domain.AppendMessageCommand{Text: "hello", Author: alice})
	req.NoError(err)
	req.Equal(domain.Message{ID: id, Text: "hello", Author: alice, CreatedAt: at}, message)

	// Then the triggers and the feed are told
	req.Equal(event.MessageCreated{Message: message}, <-created)
	req.Equal(event.FeedChanged{ID: id, Change: event.Created, At: at}, <-changes)
}

func TestMessageStore_Append_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().Append(gomock.Any()).Times(0)
	store := NewMessageStore(repository, nil, nil, 10, slog.Default())

	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", errors.ErrEmptyText},
		{"blank", " \t\n ", errors.ErrEmptyText},
		{"too long", strings.Repeat("a", 11), errors.ErrTextTooLong},
		{"malformed", "\xff\xfe", errors.ErrMalformedText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Append(context.Background(), domain.AppendMessageCommand{Text: tt.text, Author: alice})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMessageStore_Append_Counts_Runes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().Append(gomock.Any()).Return(repositories.DiskMessage{ID: uuid.New()}, nil)
	store := NewMessageStore(repository, make(chan event.MessageCreated, 1), make(chan event.FeedChanged, 1), 5, slog.Default())

	// Five runes, ten bytes
	_, err := store.Append(context.Background(), domain.AppendMessageCommand{Text: "ééééé", Author: alice})
	req.NoError(err)
}

func TestMessageStore_Append_Survives_Full_Trigger_Channel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().Append(gomock.Any()).Return(repositories.DiskMessage{ID: uuid.New(), Text: "hello"}, nil)

	// Given nobody reading the trigger channel
	store := NewMessageStore(repository, make(chan event.MessageCreated), nil, 100, slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Then the message is still stored, its outbox entry will redeliver it
	message, err := store.Append(ctx, domain.AppendMessageCommand{Text: "hello", Author: alice})
	req.NoError(err)
	req.Equal("hello", message.Text)
}

func TestMessageStore_UpdateText(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	changes := make(chan event.FeedChanged, 1)
	store := NewMessageStore(repository, nil, changes, 100, slog.Default())

	id := uuid.New()
	repository.EXPECT().UpdateText(id, "*******").Return(nil)
	req.NoError(store.UpdateText(context.Background(), id, "*******"))

	change := <-changes
	req.Equal(id, change.ID)
	req.Equal(event.Modified, change.Change)

	// A failed write publishes nothing
	repository.EXPECT().UpdateText(id, "x").Return(errors.ErrMessageNotFound)
	req.ErrorIs(store.UpdateText(context.Background(), id, "x"), errors.ErrMessageNotFound)
	req.Empty(changes)
}

func TestMessageStore_Recent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	store := NewMessageStore(repository, nil, nil, 100, slog.Default())

	first, second := uuid.New(), uuid.New()
	repository.EXPECT().Recent(2).Return([]repositories.DiskMessage{
		{ID: first, Text: "one", AuthorID: "u1"},
		{ID: second, Text: "two", AuthorID: "u2"},
	}, nil)

	messages, err := store.Recent(context.Background(), 2)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal(first, messages[0].ID)
	req.Equal("u2", messages[1].Author.ID)
}
