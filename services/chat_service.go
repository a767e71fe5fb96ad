//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	goerrors "errors"
	"firechat/contract"
	"firechat/domain"
	"firechat/errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type IChatService interface {
	PostMessage(ctx context.Context, author domain.Principal, text string) (domain.Message, error)
	Feed(ctx context.Context, query domain.FeedQuery) (domain.Snapshot, error)
	Subscribe(ctx context.Context, query domain.FeedQuery) (<-chan domain.Snapshot, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Message, error)
}

// Searcher finds messages by their current text.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

type ChatService struct {
	store        IMessageStore
	registry     contract.IRegistry
	searcher     Searcher
	defaultLimit int
	maxLimit     int
	log          *slog.Logger
}

func NewChatService(store IMessageStore, registry contract.IRegistry, searcher Searcher,
	defaultLimit, maxLimit int, log *slog.Logger) *ChatService {
	return &ChatService{
		store:        store,
		registry:     registry,
		searcher:     searcher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		log:          log,
	}
}

func (s *ChatService) PostMessage(ctx context.Context, author domain.Principal, text string) (domain.Message, error) {
	return s.store.Append(ctx, domain.AppendMessageCommand{Text: text, Author: author})
}

// Feed returns the current snapshot of the last messages.
func (s *ChatService) Feed(ctx context.Context, query domain.FeedQuery) (domain.Snapshot, error) {
	return s.snapshot(ctx, s.limit(query.Limit))
}

// Subscribe delivers the current snapshot right away, then a fresh one after every
// creation or modification, until ctx ends. A slow reader only misses intermediate
// snapshots, never the latest one.
func (s *ChatService) Subscribe(ctx context.Context, query domain.FeedQuery) (<-chan domain.Snapshot, error) {
	limit := s.limit(query.Limit)
	sink := newLatestSnapshot()
	id := uuid.NewString()

	// Registered before the first query so no change can slip in between
	s.registry.Subscribe(id, limit, sink)
	snapshot, err := s.snapshot(ctx, limit)
	if err != nil {
		s.registry.Unsubscribe(id)
		sink.close()
		return nil, err
	}
	sink.Push(snapshot)
	s.log.Debug("Feed subscriber joined", "subscriber", id, "limit", limit)

	go func() {
		<-ctx.Done()
		s.registry.Unsubscribe(id)
		sink.close()
		s.log.Debug("Feed subscriber left", "subscriber", id)
	}()
	return sink.ch, nil
}

// Search resolves the matching identifiers into their current records.
// Hits whose message vanished in the meantime are skipped.
func (s *ChatService) Search(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	ids, err := s.searcher.Search(ctx, query, s.limit(limit))
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.store.Get(ctx, id)
		if goerrors.Is(err, errors.ErrMessageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *ChatService) snapshot(ctx context.Context, limit int) (domain.Snapshot, error) {
	at := time.Now()
	messages, err := s.store.Recent(ctx, limit)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Messages: messages, At: at}, nil
}

func (s *ChatService) limit(requested int) int {
	if requested <= 0 {
		return s.defaultLimit
	}
	if s.maxLimit > 0 && requested > s.maxLimit {
		return s.maxLimit
	}
	return requested
}
