package sink

import (
	"context"
	"log/slog"

	"chat-relay/domain/event"
)

// LogSink writes every domain event to the structured log.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.UserConnected:
		s.log.Info("User connected", "user", evt.Username)
	case event.UserDisconnected:
		s.log.Info("User disconnected", "user", evt.Username)
	case event.GroupJoined:
		s.log.Info("Group joined", "user", evt.Username, "group", evt.Group)
	case event.GroupLeft:
		s.log.Info("Group left", "user", evt.Username, "group", evt.Group)
	case event.MessageRouted:
		s.log.Debug("Message routed",
			"sender", evt.Sender, "mode", evt.Mode, "target", evt.Target,
			"kind", evt.Kind, "recipients", evt.Recipients)
	case event.Censored:
		s.log.Warn("Message censored",
			"sender", evt.Sender, "target", evt.Target, "lang", evt.Lang, "hits", evt.Hits)
	}
	return nil
}
