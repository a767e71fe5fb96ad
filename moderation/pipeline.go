//go:generate go run go.uber.org/mock/mockgen -source=pipeline.go -destination=../mocks/mock_text_writer.go -package=mocks
package moderation

import (
	"context"
	"firechat/domain/event"
	"firechat/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// TextWriter is the only access the pipeline has to the message store.
type TextWriter interface {
	UpdateText(ctx context.Context, id uuid.UUID, text string) error
}

// Pipeline is the creation trigger that scrubs profanity.
// It keeps no state between invocations, so any number can run in parallel.
type Pipeline struct {
	filter    Filter
	writer    TextWriter
	telemetry chan event.Event
	log       *slog.Logger
}

func NewPipeline(filter Filter, writer TextWriter, telemetry chan event.Event, log *slog.Logger) *Pipeline {
	return &Pipeline{filter: filter, writer: writer, telemetry: telemetry, log: log}
}

// OnCreate evaluates the text captured at creation and writes the cleaned text back when needed.
// Running it again on the same event yields the same write, so redelivery is harmless.
func (p *Pipeline) OnCreate(ctx context.Context, evt event.MessageCreated) error {
	msg := evt.Message
	verdict, err := Evaluate(p.filter, msg.Text)
	if err != nil {
		return fmt.Errorf("message %s: %w", msg.ID, err)
	}
	if !verdict.IsProfane {
		return nil
	}

	if err = p.writer.UpdateText(ctx, msg.ID, verdict.Cleaned); err != nil {
		return fmt.Errorf("%w: message %s: %w", errors.ErrWriteBack, msg.ID, err)
	}

	lang := whatlanggo.Detect(msg.Text).Lang.Iso6391()
	p.log.Info("Message moderated",
		"message_id", msg.ID,
		"author", msg.Author.ID,
		"words", len(verdict.Words),
		"lang", lang,
		"attempt", evt.Attempt)
	p.publish(event.MessageModerated{ID: msg.ID, Words: verdict.Words, Lang: lang})
	return nil
}

func (p *Pipeline) publish(payload event.MessageModerated) {
	if p.telemetry == nil {
		return
	}
	select {
	case p.telemetry <- event.Event{Type: event.MessageModeratedType, CreatedAt: time.Now().UTC(), Payload: payload}:
	default:
		p.log.Debug("Observability telemetry event lost")
	}
}
