package workers

import (
	"context"
	"firechat/domain/event"
	"log/slog"
)

// TelemetryWorker hands every telemetry event to the handler chain.
type TelemetryWorker struct {
	log           *slog.Logger
	telemetryChan chan event.Event
	handlers      []event.Handler
}

func NewTelemetryWorker(log *slog.Logger, telemetryChan chan event.Event, handlers ...event.Handler) *TelemetryWorker {
	return &TelemetryWorker{log: log, telemetryChan: telemetryChan, handlers: handlers}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.telemetryChan:
			if !ok {
				return nil
			}
			for _, h := range w.handlers {
				h.Handle(evt)
			}
		}
	}
}
