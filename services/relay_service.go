package services

import (
	"fmt"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/moderation"
	"chat-relay/observability"
)

type IRelayService interface {
	Register(m contract.Member) error
	Disconnect(m contract.Member)
	JoinGroup(m contract.Member, name string) error
	LeaveGroup(m contract.Member)
	Route(m contract.Member, frame domain.Frame)
}

// RelayService coordinates the two registries for the sessions. Sessions
// never touch another session's channel: everything cross-session goes
// through here and then through a registry forward or broadcast.
type RelayService struct {
	log          *slog.Logger
	users        contract.IUserRegistry
	groups       contract.IGroupRegistry
	moderator    *moderation.Moderator
	monitoring   *observability.MonitoringManager
	events       chan<- event.DomainEvent
	defaultGroup string
}

func NewRelayService(
	log *slog.Logger,
	users contract.IUserRegistry,
	groups contract.IGroupRegistry,
	moderator *moderation.Moderator,
	monitoring *observability.MonitoringManager,
	events chan<- event.DomainEvent,
	defaultGroup string,
) *RelayService {
	return &RelayService{
		log:          log,
		users:        users,
		groups:       groups,
		moderator:    moderator,
		monitoring:   monitoring,
		events:       events,
		defaultGroup: defaultGroup,
	}
}

// Register completes the handshake for an authenticated session: directory
// entry, user list broadcast to everyone, then the automatic join of the
// default group.
func (s *RelayService) Register(m contract.Member) error {
	if err := s.users.Register(m); err != nil {
		return err
	}
	s.users.BroadcastUserList()

	if err := s.groups.Join(m, s.defaultGroup); err != nil {
		// Default group full: the session stays connected without a group.
		s.log.Warn("Default group join rejected", "user", m.Username(), "err", err)
	}

	s.emit(event.UserConnected{Username: m.Username(), At: time.Now().UTC()})
	return nil
}

// Disconnect runs the teardown sequence once a session is done: leave the
// current group, drop the directory entry, tell everyone who is left.
func (s *RelayService) Disconnect(m contract.Member) {
	s.groups.Leave(m)
	s.users.Unregister(m.Username())
	s.users.BroadcastUserList()
	s.emit(event.UserDisconnected{Username: m.Username(), At: time.Now().UTC()})
}

func (s *RelayService) JoinGroup(m contract.Member, name string) error {
	err := s.groups.Join(m, name)
	if err != nil {
		s.monitoring.RoutingError()
		return err
	}
	s.emit(event.GroupJoined{Username: m.Username(), Group: name, At: time.Now().UTC()})
	return nil
}

func (s *RelayService) LeaveGroup(m contract.Member) {
	group := m.CurrentGroup()
	s.groups.Leave(m)
	if group != "" {
		s.emit(event.GroupLeft{Username: m.Username(), Group: group, At: time.Now().UTC()})
	}
}

// Route forwards a TEXT or IMAGE frame. The sender identity always comes
// from the session, never from the frame's sender field. Routing failures
// are reported to the originator only; the session keeps running.
func (s *RelayService) Route(m contract.Member, frame domain.Frame) {
	payload := frame.Payload
	if frame.Kind == domain.KindText {
		payload = s.moderate(m, frame.Target, payload)
	}

	switch frame.Mode {
	case domain.ModeGroup:
		out := domain.GroupMessage(frame.Kind, frame.Target, m.Username(), payload)
		recipients, err := s.groups.Broadcast(frame.Target, out, m.Username())
		if err != nil {
			s.replyError(m, "Group not found: "+frame.Target)
			return
		}
		s.routed(m, frame, recipients)
	case domain.ModeIndividual:
		recipient, ok := s.users.Lookup(frame.Target)
		if !ok {
			s.replyError(m, "User not found: "+frame.Target)
			return
		}
		if err := recipient.Send(domain.IndividualMessage(frame.Kind, m.Username(), payload)); err != nil {
			s.log.Debug("Error forwarding private message", "to", frame.Target, "err", err)
			s.monitoring.FrameDropped()
			return
		}
		s.routed(m, frame, 1)
	}
}

// moderate runs the censor over text content when moderation is enabled.
// IMAGE payloads are opaque to the relay and never pass through here.
func (s *RelayService) moderate(m contract.Member, target, content string) string {
	if s.moderator == nil {
		return content
	}
	censored, hits := s.moderator.Censor(content)
	if hits == 0 {
		return content
	}
	s.monitoring.MessageCensored()
	s.emit(event.Censored{
		Sender: m.Username(),
		Target: target,
		Lang:   moderation.DetectLang(content),
		Hits:   hits,
		At:     time.Now().UTC(),
	})
	return censored
}

func (s *RelayService) routed(m contract.Member, frame domain.Frame, recipients int) {
	s.monitoring.FrameRouted()
	s.emit(event.MessageRouted{
		Sender:     m.Username(),
		Mode:       string(frame.Mode),
		Target:     frame.Target,
		Kind:       string(frame.Kind),
		Recipients: recipients,
		At:         time.Now().UTC(),
	})
}

func (s *RelayService) replyError(m contract.Member, message string) {
	s.monitoring.RoutingError()
	if err := m.Send(domain.ErrorFrame(message)); err != nil {
		s.log.Debug("Error sending routing error", "to", m.Username(), "err", err)
	}
}

// emit never blocks the routing path: when the fanout is behind, the event
// is dropped with a debug log, same policy as the telemetry channel.
func (s *RelayService) emit(e event.DomainEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- e:
	default:
		s.log.Debug(fmt.Sprintf("Domain event lost : %T", e))
	}
}
