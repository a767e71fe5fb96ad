//go:generate go run go.uber.org/mock/mockgen -source=outbox.go -destination=../mocks/mock_outbox_repository.go -package=mocks
package repositories

import (
	goerrors "errors"
	"firechat/errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const deadLetterPrefix = "deadletter:"

// IOutboxRepository tracks creation events whose triggers have not completed yet.
type IOutboxRepository interface {
	Pending() ([]PendingMessage, error)
	Attempt(id uuid.UUID) (int, error)
	Ack(id uuid.UUID) error
	DeadLetter(id uuid.UUID, attempts int, reason string) error
	DeadLetters() ([]DeadLetter, error)
	Requeue(id uuid.UUID) error
}

type PendingMessage struct {
	Message  DiskMessage
	Attempts int
}

type DeadLetter struct {
	MessageID uuid.UUID
	Attempts  int
	Reason    string
	At        time.Time
}

type OutboxRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewOutboxRepository(db *badger.DB, log *slog.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, log: log}
}

// Pending lists every message still waiting for its triggers, in key order.
func (o *OutboxRepository) Pending() ([]PendingMessage, error) {
	var pending []PendingMessage
	err := o.db.View(func(txn *badger.Txn) error {
		prefix := []byte(pendingPrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id, err := uuid.Parse(strings.TrimPrefix(string(item.Key()), pendingPrefix))
			if err != nil {
				o.log.Warn("Skipping malformed pending key", "key", string(item.Key()))
				continue
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			attempts, _ := strconv.Atoi(string(raw))
			message, err := getMessage(txn, id)
			if goerrors.Is(err, errors.ErrMessageNotFound) {
				o.log.Warn("Pending trigger without message", "message_id", id)
				continue
			}
			if err != nil {
				return err
			}
			pending = append(pending, PendingMessage{Message: message, Attempts: attempts})
		}
		return nil
	})
	return pending, err
}

// Attempt records one more delivery attempt and returns the new total.
func (o *OutboxRepository) Attempt(id uuid.UUID) (int, error) {
	var attempts int
	err := o.db.Update(func(txn *badger.Txn) error {
		key := []byte(pendingPrefix + id.String())
		item, err := txn.Get(key)
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotPending
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		attempts, _ = strconv.Atoi(string(raw))
		attempts++
		return txn.Set(key, []byte(strconv.Itoa(attempts)))
	})
	return attempts, err
}

func (o *OutboxRepository) Ack(id uuid.UUID) error {
	return o.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(pendingPrefix + id.String()))
	})
}

// DeadLetter removes the pending entry and keeps the failure for operators.
func (o *OutboxRepository) DeadLetter(id uuid.UUID, attempts int, reason string) error {
	value, err := marshalDeadLetter(DeadLetter{
		MessageID: id,
		Attempts:  attempts,
		Reason:    reason,
		At:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return o.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(pendingPrefix + id.String())); err != nil {
			return err
		}
		return txn.Set([]byte(deadLetterPrefix+id.String()), value)
	})
}

func (o *OutboxRepository) DeadLetters() ([]DeadLetter, error) {
	var letters []DeadLetter
	err := o.db.View(func(txn *badger.Txn) error {
		prefix := []byte(deadLetterPrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				letter, err := unmarshalDeadLetter(value)
				if err != nil {
					return err
				}
				letters = append(letters, letter)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return letters, err
}

// Requeue turns a dead letter back into a pending entry with a fresh attempt budget.
// It is picked up on the next start of the trigger dispatcher.
func (o *OutboxRepository) Requeue(id uuid.UUID) error {
	return o.db.Update(func(txn *badger.Txn) error {
		key := []byte(deadLetterPrefix + id.String())
		if _, err := txn.Get(key); goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrMessageNotFound
		} else if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Set([]byte(pendingPrefix+id.String()), []byte("0"))
	})
}
