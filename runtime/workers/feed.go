package workers

import (
	"context"
	"firechat/contract"
	"firechat/domain"
	"firechat/domain/event"
	"log/slog"
	"time"
)

// FeedWorker turns store changes into live feed snapshots.
//
// Permanent sinks see every change. Subscribers only see the resulting state:
// pending changes are drained first, then the last N messages are queried once
// per distinct limit and pushed to every subscriber with that limit.
type FeedWorker struct {
	log         *slog.Logger
	changes     chan event.FeedChanged
	sinks       []contract.EventSink
	registry    contract.IRegistry
	feed        contract.IMessageFeed
	sinkTimeout time.Duration
}

func NewFeedWorker(log *slog.Logger, changes chan event.FeedChanged, registry contract.IRegistry,
	feed contract.IMessageFeed, sinkTimeout time.Duration) *FeedWorker {
	return &FeedWorker{
		log:         log,
		changes:     changes,
		registry:    registry,
		feed:        feed,
		sinkTimeout: sinkTimeout,
	}
}

func (w *FeedWorker) Add(sinks ...contract.EventSink) *FeedWorker {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *FeedWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping feed updates")
			return nil
		case evt, ok := <-w.changes:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.Fanout(ctx, evt)
			w.drain(ctx)
			w.Refresh(ctx)
		}
	}
}

func (w *FeedWorker) drain(ctx context.Context) {
	for {
		select {
		case evt, ok := <-w.changes:
			if !ok {
				return
			}
			w.Fanout(ctx, evt)
		default:
			return
		}
	}
}

// Fanout hands one change to every permanent sink, each bounded by the sink timeout.
func (w *FeedWorker) Fanout(ctx context.Context, evt event.FeedChanged) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed to consume feed change",
				"sink", sinkName(sink), "message_id", evt.ID, "error", err)
		}
		cancel()
	}
}

// Refresh pushes a fresh snapshot to every live subscriber.
func (w *FeedWorker) Refresh(ctx context.Context) {
	byLimit := make(map[int][]contract.SnapshotSink)
	for _, s := range w.registry.Subscriptions() {
		byLimit[s.Limit] = append(byLimit[s.Limit], s.Sink)
	}

	for limit, sinks := range byLimit {
		at := time.Now()
		messages, err := w.feed.Recent(ctx, limit)
		if err != nil {
			w.log.Error("Cannot build feed snapshot", "limit", limit, "error", err)
			continue
		}
		snapshot := domain.Snapshot{Messages: messages, At: at}
		for _, sink := range sinks {
			sink.Push(snapshot)
		}
	}
}

func sinkName(sink contract.EventSink) string {
	if named, ok := sink.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "sink"
}
