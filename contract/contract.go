//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"firechat/domain"
	"firechat/domain/event"
	"reflect"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Trigger reacts to the creation of a message.
// It may be invoked more than once for the same message and must tolerate it.
type Trigger interface {
	OnCreate(ctx context.Context, evt event.MessageCreated) error
}

// EventSink is a permanent consumer of feed changes (search index, projections).
type EventSink interface {
	Consume(ctx context.Context, evt event.FeedChanged) error
}

// SnapshotSink receives the ordered feed of one live subscriber.
type SnapshotSink interface {
	Push(snapshot domain.Snapshot)
}

// Subscription is what the feed worker needs to refresh one subscriber.
type Subscription struct {
	ID    string
	Limit int
	Sink  SnapshotSink
}

type IRegistry interface {
	Subscribe(subscriberID string, limit int, sink SnapshotSink)
	Unsubscribe(subscriberID string)
	Subscriptions() []Subscription
}

// IMessageFeed is the read side used to build snapshots.
type IMessageFeed interface {
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Message, error)
}
