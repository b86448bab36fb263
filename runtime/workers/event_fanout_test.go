package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain/event"
	"chat-relay/mocks"
)

func TestEventFanout_DeliversToEverySink(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSink := mocks.NewMockEventSink(ctrl)
	mockSink1 := mocks.NewMockEventSink(ctrl)

	domainEvents := make(chan event.DomainEvent, 4)
	fanout := NewEventFanout(log, domainEvents).Add(mockSink, mockSink1)

	done := make(chan struct{})
	count := 0
	// Given both sinks consume the event
	consume := func(ctx context.Context, evt event.DomainEvent) error {
		count++
		if count == 2 {
			close(done)
		}
		return nil
	}
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(consume).Times(1)
	mockSink1.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(consume).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	// When an event is published
	domainEvents <- event.UserConnected{Username: "Alice", At: time.Now()}

	// Then both sinks saw it
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("Goroutine did not terminated at time")
	}
}

func TestEventFanout_SinkErrorDoesNotStopTheOthers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	domainEvents := make(chan event.DomainEvent, 4)
	fanout := NewEventFanout(log, domainEvents).Add(failing, healthy)

	done := make(chan struct{})
	// Given the first sink rejects the event
	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded).Times(1)
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, evt event.DomainEvent) error {
			close(done)
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	domainEvents <- event.UserDisconnected{Username: "Alice", At: time.Now()}

	// Then the healthy sink was still reached
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("Goroutine did not terminated at time")
	}
}

func TestTelemetryWorker_HandsEventsToEveryHandler(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	counter := event.NewCounter()
	handlers := []event.Handler{
		event.NewWorkerRestartedAfterPanicHandler(log, counter),
	}

	telemetryChan := make(chan event.Event, 4)
	worker := NewTelemetryWorker(log, telemetryChan, handlers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a restart event arrives
	telemetryChan <- event.Event{
		Type:    event.RestartedAfterPanicType,
		Payload: event.WorkerRestartedAfterPanic{WorkerName: "Listener"},
	}

	// Then the counter behind the handler moved
	req.Eventually(func() bool {
		return counter.Get(event.RestartedAfterPanicType) == 1
	}, time.Second, 5*time.Millisecond)
}
