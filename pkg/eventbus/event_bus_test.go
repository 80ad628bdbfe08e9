package eventbus_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/bdedica/tramite/pkg/channels/gochannel"
	"github.com/bdedica/tramite/pkg/eventbus"
	"github.com/bdedica/tramite/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestPublishAndSubscribeRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)
	received := make(chan any, 1)

	err := bus.Handle(events.ProcessStartedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	published := events.ProcessStarted{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.ProcessStartedEvent,
			Timestamp: time.Now().UTC(),
			ProcessID: "proc-1",
		},
		TemplateID:  "tpl-1",
		ExecutionID: "exec-1",
		StageID:     "stage-a",
		UserID:      "user-1",
	}

	require.NoError(t, bus.Publish(ctx, "proc-1", published))

	select {
	case event := <-received:
		started, ok := event.(*events.ProcessStarted)
		require.True(t, ok)
		assert.Equal(t, "proc-1", started.ProcessID)
		assert.Equal(t, "tpl-1", started.TemplateID)
		assert.Equal(t, events.ProcessStartedEvent, started.GetType())
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestEventsWithoutHandlerAreAcked(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)
	received := make(chan any, 1)

	err := bus.Handle(events.ProcessConcludedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this type; it must not block the stream.
	require.NoError(t, bus.Publish(ctx, "proc-1", events.StageCompleted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.StageCompletedEvent, ProcessID: "proc-1"},
	}))

	require.NoError(t, bus.Publish(ctx, "proc-1", events.ProcessConcluded{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.ProcessConcludedEvent, ProcessID: "proc-1"},
	}))

	select {
	case event := <-received:
		_, ok := event.(*events.ProcessConcluded)
		assert.True(t, ok)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
