package services

import (
	"context"
	"firechat/domain"
	"firechat/domain/event"
	"firechat/errors"
	"firechat/repositories"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageStore interface {
	Append(ctx context.Context, cmd domain.AppendMessageCommand) (domain.Message, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Message, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) error
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
}

// MessageStore is the single entry point for message records.
// Every write is announced: creations to the trigger channel, creations and
// modifications to the feed channel.
type MessageStore struct {
	repository       repositories.IMessageRepository
	created          chan event.MessageCreated
	changes          chan event.FeedChanged
	maxContentLength int
	log              *slog.Logger
}

func NewMessageStore(repository repositories.IMessageRepository,
	created chan event.MessageCreated, changes chan event.FeedChanged,
	maxContentLength int, log *slog.Logger) *MessageStore {
	return &MessageStore{
		repository:       repository,
		created:          created,
		changes:          changes,
		maxContentLength: maxContentLength,
		log:              log,
	}
}

// Append validates and persists a new message, then hands it to the triggers.
// If the creation event cannot be handed over before ctx ends, the message stays
// pending in the outbox and is delivered on the next start.
func (s *MessageStore) Append(ctx context.Context, cmd domain.AppendMessageCommand) (domain.Message, error) {
	if err := s.validate(cmd.Text); err != nil {
		return domain.Message{}, err
	}

	stored, err := s.repository.Append(toDiskMessage(cmd))
	if err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	message := stored.ToDomain()

	if err = s.publishCreated(ctx, event.MessageCreated{Message: message}); err != nil {
		s.log.Warn("Creation event not handed over, left in outbox",
			"message_id", message.ID, "error", err)
	}
	s.publishChange(ctx, event.FeedChanged{ID: message.ID, Change: event.Created, At: message.CreatedAt})
	return message, nil
}

func (s *MessageStore) Get(_ context.Context, id uuid.UUID) (domain.Message, error) {
	stored, err := s.repository.Get(id)
	if err != nil {
		return domain.Message{}, err
	}
	return stored.ToDomain(), nil
}

// UpdateText replaces the text of an existing message, leaving every other field untouched.
func (s *MessageStore) UpdateText(ctx context.Context, id uuid.UUID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.repository.UpdateText(id, text); err != nil {
		return err
	}
	s.publishChange(ctx, event.FeedChanged{ID: id, Change: event.Modified, At: time.Now().UTC()})
	return nil
}

// Recent returns the last limit messages ordered by creation time, oldest first.
func (s *MessageStore) Recent(_ context.Context, limit int) ([]domain.Message, error) {
	stored, err := s.repository.Recent(limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(stored, func(m repositories.DiskMessage, _ int) domain.Message {
		return m.ToDomain()
	}), nil
}

func (s *MessageStore) validate(text string) error {
	if !utf8.ValidString(text) {
		return errors.ErrMalformedText
	}
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyText
	}
	if s.maxContentLength > 0 && utf8.RuneCountInString(text) > s.maxContentLength {
		return fmt.Errorf("%w: %d characters max", errors.ErrTextTooLong, s.maxContentLength)
	}
	return nil
}

func (s *MessageStore) publishCreated(ctx context.Context, evt event.MessageCreated) error {
	if s.created == nil {
		return errors.ErrStoreClosed
	}
	select {
	case s.created <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publishChange gives up when ctx ends. Subscribers re-query the whole feed on the next change.
func (s *MessageStore) publishChange(ctx context.Context, evt event.FeedChanged) {
	if s.changes == nil {
		return
	}
	select {
	case s.changes <- evt:
	case <-ctx.Done():
		s.log.Debug("Feed change lost", "message_id", evt.ID, "change", evt.Change)
	}
}

func toDiskMessage(cmd domain.AppendMessageCommand) repositories.DiskMessage {
	return repositories.DiskMessage{
		Text:              cmd.Text,
		AuthorID:          cmd.Author.ID,
		AuthorDisplayName: cmd.Author.DisplayName,
		AuthorPhotoURL:    cmd.Author.PhotoURL,
		AuthorEmail:       cmd.Author.Email,
	}
}
