//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	goerrors "errors"
	"firechat/domain"
	"firechat/errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix = "msg:"
	messageIndex  = "msgid:"
	pendingPrefix = "pending:"
)

type IMessageRepository interface {
	Append(message DiskMessage) (DiskMessage, error)
	Get(id uuid.UUID) (DiskMessage, error)
	UpdateText(id uuid.UUID, text string) error
	Recent(limit int) ([]DiskMessage, error)
}

// MessageRepository is the message store.
// It assigns identifiers and creation times, and records a pending trigger entry
// in the same transaction as the message so no creation event can be lost.
type MessageRepository struct {
	mu     sync.Mutex
	db     *badger.DB
	log    *slog.Logger
	now    func() time.Time
	lastAt time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, now func() time.Time) (*MessageRepository, error) {
	if now == nil {
		now = time.Now
	}
	m := &MessageRepository{db: db, log: log, now: now}
	last, err := m.Recent(1)
	if err != nil {
		return nil, err
	}
	if len(last) == 1 {
		m.lastAt = last[0].CreatedAt
	}
	return m, nil
}

type DiskMessage struct {
	ID                uuid.UUID
	Text              string
	AuthorID          string
	AuthorDisplayName string
	AuthorPhotoURL    string
	AuthorEmail       string
	CreatedAt         time.Time
}

func (m DiskMessage) ToDomain() domain.Message {
	return domain.Message{
		ID:   m.ID,
		Text: m.Text,
		Author: domain.Principal{
			ID:          m.AuthorID,
			DisplayName: m.AuthorDisplayName,
			PhotoURL:    m.AuthorPhotoURL,
			Email:       m.AuthorEmail,
		},
		CreatedAt: m.CreatedAt,
	}
}

// messageKey is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep the key unique even if two stores share the same data.
func messageKey(message DiskMessage) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, message.CreatedAt.UnixNano(), message.ID))
}

// Append persists a new message. ID and CreatedAt of the argument are ignored.
// CreatedAt strictly increases in insertion order, even if the wall clock stalls or goes backwards,
// so the key order is the insertion order.
func (m *MessageRepository) Append(message DiskMessage) (DiskMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.now().UTC()
	if !at.After(m.lastAt) {
		at = m.lastAt.Add(time.Nanosecond)
	}
	message.ID = uuid.New()
	message.CreatedAt = at

	value, err := marshalMessage(message)
	if err != nil {
		return DiskMessage{}, err
	}
	key := messageKey(message)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return err
		}
		if err := txn.Set([]byte(messageIndex+message.ID.String()), key); err != nil {
			return err
		}
		return txn.Set([]byte(pendingPrefix+message.ID.String()), []byte("0"))
	})
	if err != nil {
		return DiskMessage{}, err
	}
	m.lastAt = at
	return message, nil
}

func (m *MessageRepository) Get(id uuid.UUID) (DiskMessage, error) {
	var message DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, err = getMessage(txn, id)
		return err
	})
	return message, err
}

// UpdateText replaces the text of an existing message and nothing else.
func (m *MessageRepository) UpdateText(id uuid.UUID, text string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		message, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		message.Text = text
		value, err := marshalMessage(message)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(message), value)
	})
}

// Recent returns the last limit messages, oldest first.
// Thanks to the padded timestamp in the key, a reverse prefix scan yields the newest messages first.
func (m *MessageRepository) Recent(limit int) ([]DiskMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	var messages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(bytes.Clone(prefix), 0xff)); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				break
			}
			var message DiskMessage
			err := it.Item().Value(func(value []byte) error {
				var err error
				message, err = unmarshalMessage(value)
				return err
			})
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func getMessage(txn *badger.Txn, id uuid.UUID) (DiskMessage, error) {
	item, err := txn.Get([]byte(messageIndex + id.String()))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return DiskMessage{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return DiskMessage{}, err
	}
	key, err := item.ValueCopy(nil)
	if err != nil {
		return DiskMessage{}, err
	}
	item, err = txn.Get(key)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return DiskMessage{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return DiskMessage{}, err
	}
	var message DiskMessage
	err = item.Value(func(value []byte) error {
		message, err = unmarshalMessage(value)
		return err
	})
	return message, err
}
