package workers

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// EventFanout broadcasts domain events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
//
// It is intended for observability and side effects (logs, metrics),
// not for the routing path: a dropped event never means a dropped frame.
type EventFanout struct {
	log          *slog.Logger
	domainEvents chan event.DomainEvent
	sinks        []contract.EventSink
}

func NewEventFanout(log *slog.Logger, domainEvents chan event.DomainEvent) *EventFanout {
	return &EventFanout{log: log, domainEvents: domainEvents}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.domainEvents:
			if !ok {
				return nil
			}
			w.fanout(ctx, evt)
		}
	}
}

// fanout One sink for each event
func (w *EventFanout) fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Debug("Sink rejected event", "err", err)
		}
	}
}
