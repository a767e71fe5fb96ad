package runtime

import (
	"context"
	"firechat/domain"
	"firechat/domain/event"
	"firechat/errors"
	"firechat/mocks"
	"firechat/repositories"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newCreated() event.MessageCreated {
	return event.MessageCreated{Message: domain.Message{ID: uuid.New(), Text: "hello", CreatedAt: time.Now().UTC()}}
}

func TestDispatcher_Deliver_Success(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	trigger := mocks.NewMockTrigger(ctrl)
	dispatcher := NewDispatcher(outbox, nil, slog.Default(), time.Second, 3, time.Millisecond)
	dispatcher.Register("moderation", trigger)

	evt := newCreated()
	gomock.InOrder(
		outbox.EXPECT().Attempt(evt.Message.ID).Return(1, nil),
		trigger.EXPECT().OnCreate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, got event.MessageCreated) error {
				req.Equal(evt.Message, got.Message)
				req.Equal(1, got.Attempt)
				return nil
			}),
		outbox.EXPECT().Ack(evt.Message.ID).Return(nil),
	)

	req.NoError(dispatcher.Deliver(context.Background(), evt))
}

func TestDispatcher_Deliver_Already_Handled(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	trigger := mocks.NewMockTrigger(ctrl)
	dispatcher := NewDispatcher(outbox, nil, slog.Default(), time.Second, 3, time.Millisecond)
	dispatcher.Register("moderation", trigger)

	// Given a duplicate delivery of an acknowledged event
	evt := newCreated()
	outbox.EXPECT().Attempt(evt.Message.ID).Return(0, errors.ErrNotPending)
	trigger.EXPECT().OnCreate(gomock.Any(), gomock.Any()).Times(0)

	require.NoError(t, dispatcher.Deliver(context.Background(), evt))
}

func TestDispatcher_Triggers_Run_In_Registration_Order(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	first := mocks.NewMockTrigger(ctrl)
	second := mocks.NewMockTrigger(ctrl)
	dispatcher := NewDispatcher(outbox, nil, slog.Default(), time.Second, 3, time.Millisecond)
	dispatcher.Register("first", first)
	dispatcher.Register("second", second)

	evt := newCreated()
	outbox.EXPECT().Attempt(evt.Message.ID).Return(1, nil)
	gomock.InOrder(
		first.EXPECT().OnCreate(gomock.Any(), gomock.Any()).Return(nil),
		second.EXPECT().OnCreate(gomock.Any(), gomock.Any()).Return(nil),
	)
	outbox.EXPECT().Ack(evt.Message.ID).Return(nil)

	require.NoError(t, dispatcher.Deliver(context.Background(), evt))
}

func TestDispatcher_Retries_Then_Succeeds(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	trigger := mocks.NewMockTrigger(ctrl)
	telemetry := make(chan event.Event, 10)
	dispatcher := NewDispatcher(outbox, telemetry, slog.Default(), time.Second, 3, time.Millisecond)
	dispatcher.Register("moderation", trigger)

	evt := newCreated()
	gomock.InOrder(
		outbox.EXPECT().Attempt(evt.Message.ID).Return(1, nil),
		trigger.EXPECT().OnCreate(gomock.Any(), gomock.Any()).Return(errors.ErrWriteBack),
		outbox.EXPECT().Attempt(evt.Message.ID).Return(2, nil),
		trigger.EXPECT().OnCreate(gomock.Any(), gomock.Any()).Return(nil),
		outbox.EXPECT().Ack(evt.Message.ID).Return(nil),
	)

	req.NoError(dispatcher.Deliver(context.Background(), evt))

	failure := <-telemetry
	req.Equal(event.TriggerFailedType, failure.Type)
	payload := failure.Payload.(event.TriggerFailed)
	req.Equal("moderation", payload.Trigger)
	req.Equal(1, payload.Attempt)
	req.ErrorIs(payload.Err, errors.ErrWriteBack)
}

func TestDispatcher_Dead_Letters_After_Max_Attempts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	trigger := mocks.NewMockTrigger(ctrl)
	telemetry := make(chan event.Event, 10)
	dispatcher := NewDispatcher(outbox, telemetry, slog.Default(), time.Second, 2, time.Millisecond)
	dispatcher.Register("moderation", trigger)

	evt := newCreated()
	outbox.EXPECT().Attempt(evt.Message.ID).Return(1, nil)
	outbox.EXPECT().Attempt(evt.Message.ID).Return(2, nil)
	trigger.EXPECT().OnCreate(gomock.Any(), gomock.Any()).Return(errors.ErrWriteBack).Times(2)
	outbox.EXPECT().DeadLetter(evt.Message.ID, 2, gomock.Any()).
		DoAndReturn(func(_ uuid.UUID, _ int, reason string) error {
			req.Contains(reason, errors.ErrWriteBack.Error())
			return nil
		})

	err := dispatcher.Deliver(context.Background(), evt)
	req.ErrorIs(err, errors.ErrDeadLettered)
	req.ErrorIs(err, errors.ErrWriteBack)

	var types []event.Type
	for len(telemetry) > 0 {
		types = append(types, (<-telemetry).Type)
	}
	req.Equal([]event.Type{event.TriggerFailedType, event.TriggerFailedType, event.DeadLetteredType}, types)
}

func TestDispatcher_Timeout_And_Panic_Count_As_Failures(t *testing.T) {
	tests := []struct {
		name     string
		onCreate func(context.Context, event.MessageCreated) error
		want     error
	}{
		{
			name: "trigger ignoring its deadline",
			onCreate: func(context.Context, event.MessageCreated) error {
				time.Sleep(200 * time.Millisecond)
				return nil
			},
			want: errors.ErrInvocationTimeout,
		},
		{
			name: "trigger panicking",
			onCreate: func(context.Context, event.MessageCreated) error {
				panic("boom")
			},
			want: errors.ErrTriggerPanic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			outbox := mocks.NewMockIOutboxRepository(ctrl)
			dispatcher := NewDispatcher(outbox, nil, slog.Default(), 20*time.Millisecond, 1, time.Millisecond)
			dispatcher.Register("flaky", triggerFunc(tt.onCreate))

			evt := newCreated()
			outbox.EXPECT().Attempt(evt.Message.ID).Return(1, nil)
			outbox.EXPECT().DeadLetter(evt.Message.ID, 1, gomock.Any()).Return(nil)

			err := dispatcher.Deliver(context.Background(), evt)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDispatcher_Stops_During_Backoff(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	dispatcher := NewDispatcher(outbox, nil, slog.Default(), time.Second, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.Register("failing", triggerFunc(func(context.Context, event.MessageCreated) error {
		cancel()
		return fmt.Errorf("store unavailable")
	}))

	evt := newCreated()
	outbox.EXPECT().Attempt(evt.Message.ID).Return(1, nil)
	outbox.EXPECT().DeadLetter(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	outbox.EXPECT().Ack(gomock.Any()).Times(0)

	// The entry stays pending for the next start
	req.ErrorIs(dispatcher.Deliver(ctx, evt), context.Canceled)
}

func TestDispatcher_Backoff(t *testing.T) {
	req := require.New(t)
	dispatcher := NewDispatcher(nil, nil, slog.Default(), time.Second, 10, 100*time.Millisecond)
	req.Equal(100*time.Millisecond, dispatcher.backoffFor(1))
	req.Equal(200*time.Millisecond, dispatcher.backoffFor(2))
	req.Equal(400*time.Millisecond, dispatcher.backoffFor(3))
	req.Equal(maxBackoff, dispatcher.backoffFor(30))
}

func TestDispatcher_Pending(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockIOutboxRepository(ctrl)
	dispatcher := NewDispatcher(outbox, nil, slog.Default(), time.Second, 3, time.Millisecond)

	id := uuid.New()
	outbox.EXPECT().Pending().Return([]repositories.PendingMessage{
		{Message: repositories.DiskMessage{ID: id, Text: "hello", AuthorID: "u1"}, Attempts: 2},
	}, nil)

	events, err := dispatcher.Pending()
	req.NoError(err)
	req.Len(events, 1)
	req.Equal(id, events[0].Message.ID)
	req.Equal("u1", events[0].Message.Author.ID)
	req.Equal(2, events[0].Attempt)
}

type triggerFunc func(context.Context, event.MessageCreated) error

func (f triggerFunc) OnCreate(ctx context.Context, evt event.MessageCreated) error {
	return f(ctx, evt)
}
