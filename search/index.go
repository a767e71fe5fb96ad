// Package search keeps a full-text index of the current text of every message.
package search

import (
	"context"
	"firechat/contract"
	"firechat/domain"
	"firechat/domain/event"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	idField        = "_id"
	textField      = "text"
	authorField    = "author"
	createdAtField = "createdAt"
)

// Index is a permanent feed sink: every creation or modification re-indexes the
// record as currently stored, so moderated messages are only searchable by their
// cleaned text.
type Index struct {
	writer *bluge.Writer
	feed   contract.IMessageFeed
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, feed contract.IMessageFeed, log *slog.Logger) *Index {
	return &Index{writer: writer, feed: feed, log: log}
}

// Open creates or reopens the index stored at path.
func Open(path string) (*bluge.Writer, error) {
	return bluge.OpenWriter(bluge.DefaultConfig(path))
}

func (i *Index) Consume(ctx context.Context, evt event.FeedChanged) error {
	message, err := i.feed.Get(ctx, evt.ID)
	if err != nil {
		return fmt.Errorf("index message %s: %w", evt.ID, err)
	}
	return i.Put(message)
}

// Put indexes message, replacing any previous version.
func (i *Index) Put(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField(textField, message.Text)).
		AddField(bluge.NewKeywordField(authorField, message.Author.ID).StoreValue()).
		AddField(bluge.NewDateTimeField(createdAtField, message.CreatedAt).StoreValue().Sortable())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the identifiers of the messages matching query, newest first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Closing search reader", "error", err)
		}
	}()

	request := bluge.NewTopNSearch(limit, bluge.NewMatchQuery(query).SetField(textField)).
		SortBy([]string{"-" + createdAtField})
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := matches.Next()
	for err == nil && match != nil {
		var id uuid.UUID
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field != idField {
				return true
			}
			id, err = uuid.ParseBytes(value)
			return false
		})
		if visitErr != nil {
			return nil, visitErr
		}
		if err != nil {
			return nil, err
		}
		if id != uuid.Nil {
			ids = append(ids, id)
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
