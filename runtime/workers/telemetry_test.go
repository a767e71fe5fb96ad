package workers

import (
	"context"
	"firechat/domain/event"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type collectingHandler struct {
	mu     sync.Mutex
	events []event.Event
}

func (h *collectingHandler) Handle(evt event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
}

func (h *collectingHandler) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestTelemetryWorker_Calls_Every_Handler(t *testing.T) {
	req := require.New(t)
	telemetry := make(chan event.Event, 2)
	first, second := &collectingHandler{}, &collectingHandler{}

	telemetry <- event.Event{Type: event.MessageModeratedType}
	telemetry <- event.Event{Type: event.DeadLetteredType}
	close(telemetry)

	req.NoError(NewTelemetryWorker(slog.Default(), telemetry, first, second).Run(context.Background()))
	req.Equal(2, first.len())
	req.Equal(2, second.len())
	req.Equal(event.DeadLetteredType, second.events[1].Type)
}

func TestChannelCapacityWorker_Samples_Channels(t *testing.T) {
	req := require.New(t)
	telemetry := make(chan event.Event, 10)
	created := make(chan int, 4)
	created <- 1

	w := NewChannelCapacityWorker(slog.Default(), []NamedChannel{
		{Name: "created", Channel: created},
		{Name: "broken", Channel: "not a channel"},
	}, telemetry, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- w.Run(ctx) }()

	var evt event.Event
	select {
	case evt = <-telemetry:
	case <-time.After(time.Second):
		req.Fail("no sample published")
	}
	cancel()
	req.NoError(<-done)

	req.Equal(event.ChannelCapacityType, evt.Type)
	req.Equal(event.ChannelCapacity{ChannelName: "created", Capacity: 4, Length: 1}, evt.Payload)
}

func TestProcessStatsWorker_Publishes_Stats(t *testing.T) {
	req := require.New(t)
	telemetry := make(chan event.Event, 10)
	w := NewProcessStatsWorker(slog.Default(), telemetry, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- w.Run(ctx) }()

	var evt event.Event
	select {
	case evt = <-telemetry:
	case <-time.After(2 * time.Second):
		req.Fail("no process stats published")
	}
	cancel()
	req.NoError(<-done)

	req.Equal(event.ProcessStatsType, evt.Type)
	stats := evt.Payload.(event.ProcessStats)
	req.Positive(stats.PID)
	req.Positive(stats.Ram)
}
