package event

import (
	"firechat/errors"
	"fmt"
	"log/slog"
)

type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h ProcessStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcessStatsType:
		payload, ok := event.Payload.(ProcessStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("[PROCESS] PID %d | THREADS %d | CPU %.2f%% | RSS %d bytes",
			payload.PID, payload.Threads, payload.Cpu, payload.Ram))
	}
}
