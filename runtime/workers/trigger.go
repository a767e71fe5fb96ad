package workers

import (
	"context"
	"firechat/domain/event"
	"log/slog"
)

// Deliverer runs the creation triggers of one message until they succeed or give up.
type Deliverer interface {
	Deliver(ctx context.Context, evt event.MessageCreated) error
}

// TriggerWorker is one member of the trigger pool.
// Workers share the creation channel, so events for different messages run in parallel.
type TriggerWorker struct {
	log       *slog.Logger
	created   chan event.MessageCreated
	deliverer Deliverer
}

func NewTriggerWorker(log *slog.Logger, created chan event.MessageCreated, deliverer Deliverer) *TriggerWorker {
	return &TriggerWorker{log: log, created: created, deliverer: deliverer}
}

func (w *TriggerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case evt, ok := <-w.created:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if err := w.deliverer.Deliver(ctx, evt); err != nil && ctx.Err() == nil {
				w.log.Error("Creation event not delivered", "message_id", evt.Message.ID, "error", err)
			}
		}
	}
}
