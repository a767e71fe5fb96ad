package workers

import (
	"context"
	"firechat/domain/event"
	"fmt"
	"log/slog"
)

// ReplayWorker feeds the creation events left pending by a previous run back
// into the trigger pool, then terminates.
type ReplayWorker struct {
	log     *slog.Logger
	created chan event.MessageCreated
	pending []event.MessageCreated
}

func NewReplayWorker(log *slog.Logger, created chan event.MessageCreated, pending []event.MessageCreated) *ReplayWorker {
	return &ReplayWorker{log: log, created: created, pending: pending}
}

func (w *ReplayWorker) Run(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	w.log.Info(fmt.Sprintf("Redelivering %d pending creation events", len(w.pending)))
	for len(w.pending) > 0 {
		select {
		case <-ctx.Done():
			return nil
		case w.created <- w.pending[0]:
			w.pending = w.pending[1:]
		}
	}
	return nil
}
