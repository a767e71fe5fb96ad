package event

import (
	"firechat/errors"
	"log/slog"
	"sync"
)

// ModerationStats is a point-in-time copy of the moderation counters.
type ModerationStats struct {
	Moderated      uint64            `json:"moderated"`
	TriggerFailed  uint64            `json:"triggerFailed"`
	DeadLettered   uint64            `json:"deadLettered"`
	Restarts       uint64            `json:"workerRestarts"`
	WordHits       map[string]uint64 `json:"wordHits"`
	LanguageHits   map[string]uint64 `json:"languageHits"`
	LastDeadLetter string            `json:"lastDeadLetter,omitempty"`
}

// ModeratedHandler aggregates moderation outcomes for operators.
// Nothing it records is ever shown to chat participants.
type ModeratedHandler struct {
	mu             sync.Mutex
	log            *slog.Logger
	counter        *Counter
	wordHits       map[string]uint64
	languageHits   map[string]uint64
	lastDeadLetter string
}

func NewModeratedHandler(log *slog.Logger, counter *Counter) *ModeratedHandler {
	return &ModeratedHandler{
		log:          log,
		counter:      counter,
		wordHits:     make(map[string]uint64),
		languageHits: make(map[string]uint64),
	}
}

func (h *ModeratedHandler) Handle(event Event) {
	switch event.Type {
	case MessageModeratedType:
		payload, ok := event.Payload.(MessageModerated)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(MessageModeratedType)
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, w := range payload.Words {
			h.wordHits[w]++
		}
		if payload.Lang != "" {
			h.languageHits[payload.Lang]++
		}
	case TriggerFailedType:
		payload, ok := event.Payload.(TriggerFailed)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(TriggerFailedType)
		h.log.Warn("Trigger failed",
			"message_id", payload.ID,
			"trigger", payload.Trigger,
			"attempt", payload.Attempt,
			"error", payload.Err)
	case DeadLetteredType:
		payload, ok := event.Payload.(DeadLettered)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(DeadLetteredType)
		h.mu.Lock()
		h.lastDeadLetter = payload.ID.String()
		h.mu.Unlock()
	}
}

// Stats returns a copy safe to serialize while events keep flowing.
func (h *ModeratedHandler) Stats() ModerationStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	words := make(map[string]uint64, len(h.wordHits))
	for k, v := range h.wordHits {
		words[k] = v
	}
	langs := make(map[string]uint64, len(h.languageHits))
	for k, v := range h.languageHits {
		langs[k] = v
	}
	return ModerationStats{
		Moderated:      h.counter.Get(MessageModeratedType),
		TriggerFailed:  h.counter.Get(TriggerFailedType),
		DeadLettered:   h.counter.Get(DeadLetteredType),
		Restarts:       h.counter.Get(RestartedAfterPanicType),
		WordHits:       words,
		LanguageHits:   langs,
		LastDeadLetter: h.lastDeadLetter,
	}
}
