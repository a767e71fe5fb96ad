// Package runtime wires the long-running parts of the server: trigger dispatch,
// live feed and telemetry. It holds no business rule.
package runtime

import (
	"context"
	"firechat/contract"
	"firechat/domain/event"
	"firechat/runtime/workers"
	"log/slog"
	"sync"
	"time"
)

type Config struct {
	NumberOfWorkers int
	SinkTimeout     time.Duration
	MetricInterval  time.Duration
}

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	dispatcher *Dispatcher
	feed       contract.IMessageFeed
	created    chan event.MessageCreated
	changes    chan event.FeedChanged
	telemetry  chan event.Event
	sinks      []contract.EventSink
	handlers   []event.Handler
	config     Config
	ready      chan struct{}
	readyOnce  sync.Once
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	dispatcher *Dispatcher, feed contract.IMessageFeed,
	created chan event.MessageCreated, changes chan event.FeedChanged, telemetry chan event.Event,
	config Config) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		dispatcher: dispatcher,
		feed:       feed,
		created:    created,
		changes:    changes,
		telemetry:  telemetry,
		config:     config,
		ready:      make(chan struct{}),
	}
}

// RegisterTrigger adds a creation trigger. Must be called before Start.
func (o *Orchestrator) RegisterTrigger(name string, trigger contract.Trigger) {
	o.dispatcher.Register(name, trigger)
	o.log.Info("Trigger registered", "trigger", name)
}

// Add registers permanent feed sinks. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sinks...)
}

// AddHandlers registers telemetry handlers. Must be called before Start.
func (o *Orchestrator) AddHandlers(handlers ...event.Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, handlers...)
}

// Ready is closed once every worker has been handed to the supervisor.
func (o *Orchestrator) Ready() <-chan struct{} {
	return o.ready
}

// Start prepares all workers, then blocks running them until ctx ends or Stop is called.
// Creation events left pending by a previous run are redelivered first.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	pending, err := o.dispatcher.Pending()
	if err != nil {
		return err
	}
	triggerWorkers := o.prepareTriggerWorkers()
	telemetryWorkers := o.prepareTelemetry()

	// 2. Critical section (Short Lock)
	o.mu.Lock()
	feedWorker := workers.NewFeedWorker(o.log, o.changes, o.registry, o.feed, o.config.SinkTimeout).
		Add(o.sinks...)
	telemetryWorker := workers.NewTelemetryWorker(o.log, o.telemetry, o.handlers...)
	o.mu.Unlock()

	o.supervisor.Add(workers.NewReplayWorker(o.log, o.created, pending))
	o.supervisor.Add(triggerWorkers...)
	o.supervisor.Add(feedWorker, telemetryWorker)
	o.supervisor.Add(telemetryWorkers...)

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers",
		"trigger_workers", len(triggerWorkers), "pending", len(pending))
	o.readyOnce.Do(func() { close(o.ready) })
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) prepareTriggerWorkers() []contract.Worker {
	n := max(o.config.NumberOfWorkers, 1)
	res := make([]contract.Worker, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, workers.NewTriggerWorker(o.log, o.created, o.dispatcher))
	}
	return res
}

func (o *Orchestrator) prepareTelemetry() []contract.Worker {
	if o.config.MetricInterval <= 0 {
		return nil
	}
	channels := []workers.NamedChannel{
		{Name: "created", Channel: o.created},
		{Name: "changes", Channel: o.changes},
		{Name: "telemetry", Channel: o.telemetry},
	}
	return []contract.Worker{
		workers.NewChannelCapacityWorker(o.log, channels, o.telemetry, o.config.MetricInterval),
		workers.NewProcessStatsWorker(o.log, o.telemetry, o.config.MetricInterval),
	}
}

// Stop initiates a graceful shutdown: every worker sees its context canceled.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
