package runtime

import (
	"context"
	goerrors "errors"
	"firechat/contract"
	"firechat/domain/event"
	"firechat/errors"
	"firechat/repositories"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxBackoff = time.Minute

type namedTrigger struct {
	name    string
	trigger contract.Trigger
}

// Dispatcher delivers creation events to the registered triggers at least once.
// The outbox entry written with the message is only removed once every trigger
// succeeded, or moved to the dead letters when the retry budget is exhausted.
type Dispatcher struct {
	mu          sync.RWMutex
	triggers    []namedTrigger
	outbox      repositories.IOutboxRepository
	telemetry   chan event.Event
	log         *slog.Logger
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
}

func NewDispatcher(outbox repositories.IOutboxRepository, telemetry chan event.Event, log *slog.Logger,
	timeout time.Duration, maxAttempts int, backoff time.Duration) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		outbox:      outbox,
		telemetry:   telemetry,
		log:         log,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Register adds a trigger. Triggers run in registration order for each event.
func (d *Dispatcher) Register(name string, trigger contract.Trigger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.triggers = append(d.triggers, namedTrigger{name: name, trigger: trigger})
}

// Deliver runs every trigger for evt, retrying with exponential backoff.
// It returns nil once the event is acknowledged, or when another delivery already did it.
// If ctx ends first the outbox entry is kept for the next start.
func (d *Dispatcher) Deliver(ctx context.Context, evt event.MessageCreated) error {
	id := evt.Message.ID
	for {
		attempt, err := d.outbox.Attempt(id)
		if goerrors.Is(err, errors.ErrNotPending) {
			d.log.Debug("Creation event already handled", "message_id", id)
			return nil
		}
		if err != nil {
			return fmt.Errorf("record attempt for message %s: %w", id, err)
		}
		evt.Attempt = attempt

		name, err := d.invokeAll(ctx, evt)
		if err == nil {
			return d.outbox.Ack(id)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		d.publish(event.TriggerFailedType, event.TriggerFailed{ID: id, Trigger: name, Attempt: attempt, Err: err})
		if attempt >= d.maxAttempts {
			return d.deadLetter(id, attempt, err)
		}

		wait := d.backoffFor(attempt)
		d.log.Debug("Retrying trigger", "message_id", id, "trigger", name, "attempt", attempt, "in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Pending reloads the creation events left unacknowledged by a previous run.
func (d *Dispatcher) Pending() ([]event.MessageCreated, error) {
	pending, err := d.outbox.Pending()
	if err != nil {
		return nil, err
	}
	events := make([]event.MessageCreated, 0, len(pending))
	for _, p := range pending {
		events = append(events, event.MessageCreated{Message: p.Message.ToDomain(), Attempt: p.Attempts})
	}
	return events, nil
}

func (d *Dispatcher) invokeAll(ctx context.Context, evt event.MessageCreated) (string, error) {
	d.mu.RLock()
	triggers := d.triggers
	d.mu.RUnlock()

	for _, t := range triggers {
		if err := d.invoke(ctx, t.trigger, evt); err != nil {
			return t.name, fmt.Errorf("trigger %s: %w", t.name, err)
		}
	}
	return "", nil
}

// invoke bounds a single trigger call by the invocation timeout.
// A trigger ignoring its context is abandoned, not awaited.
func (d *Dispatcher) invoke(ctx context.Context, trigger contract.Trigger, evt event.MessageCreated) error {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", errors.ErrTriggerPanic, r)
			}
		}()
		done <- trigger.OnCreate(callCtx, evt)
	}()

	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.ErrInvocationTimeout
	}
}

func (d *Dispatcher) deadLetter(id uuid.UUID, attempts int, cause error) error {
	if err := d.outbox.DeadLetter(id, attempts, cause.Error()); err != nil {
		return fmt.Errorf("dead-letter message %s: %w", id, err)
	}
	d.publish(event.DeadLetteredType, event.DeadLettered{ID: id, Attempts: attempts, Reason: cause.Error()})
	d.log.Error("Creation event dead-lettered", "message_id", id, "attempts", attempts, "error", cause)
	return fmt.Errorf("%w: message %s: %w", errors.ErrDeadLettered, id, cause)
}

func (d *Dispatcher) backoffFor(attempt int) time.Duration {
	wait := d.backoff
	for i := 1; i < attempt && wait < maxBackoff; i++ {
		wait *= 2
	}
	return min(wait, maxBackoff)
}

func (d *Dispatcher) publish(t event.Type, payload any) {
	if d.telemetry == nil {
		return
	}
	select {
	case d.telemetry <- event.Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}:
	default:
		d.log.Debug("Observability telemetry event lost")
	}
}
