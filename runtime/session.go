package runtime

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/services"
	"chat-relay/transport"
)

type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateDisconnected
)

// Session is the relay-side state for one connection: a framed channel,
// the identity claimed in the handshake, and at most one current group.
//
// The read loop is the only caller of Receive. Sends may come from any
// session's goroutine, serialized inside the channel. The current-group
// field belongs to the group registry and is only touched under its lock,
// the small mutex here just makes the reads race-free for inspection.
type Session struct {
	id         uuid.UUID
	channel    *transport.Channel
	relay      services.IRelayService
	monitoring *observability.MonitoringManager
	log        *slog.Logger

	username string
	state    atomic.Int32

	groupMu      sync.Mutex
	currentGroup string

	teardownOnce sync.Once
}

func NewSession(channel *transport.Channel, relay services.IRelayService, monitoring *observability.MonitoringManager, log *slog.Logger) *Session {
	id := uuid.New()
	return &Session{
		id:         id,
		channel:    channel,
		relay:      relay,
		monitoring: monitoring,
		log:        log.With("session", id.String()[:8]),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Username() string { return s.username }

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) CurrentGroup() string {
	s.groupMu.Lock()
	defer s.groupMu.Unlock()
	return s.currentGroup
}

func (s *Session) SetCurrentGroup(name string) {
	s.groupMu.Lock()
	defer s.groupMu.Unlock()
	s.currentGroup = name
}

// Send writes one server-originated frame to this session's channel.
func (s *Session) Send(frame domain.Frame) error {
	return s.channel.Send(frame.Encode())
}

// Run drives the session through its whole life: handshake, read loop,
// teardown. It always returns nil; a session failure must never look like
// a relay failure to the caller.
func (s *Session) Run() {
	defer func() { _ = s.channel.Close() }()

	if !s.authenticate() {
		return
	}

	for {
		raw, err := s.channel.Receive()
		if err != nil {
			// Transport failure or peer gone: terminal, detected reactively.
			s.log.Debug("Session read failed", "err", err)
			s.teardown()
			return
		}

		frame, err := domain.ParseFrame(raw)
		if err != nil {
			// Best-effort notification, then the same teardown as a
			// voluntary disconnect. The relay itself keeps running.
			s.monitoring.ProtocolError()
			s.log.Warn("Protocol error", "err", err)
			_ = s.Send(domain.ErrorFrame("Protocol error: " + err.Error()))
			s.teardown()
			return
		}

		switch frame.Kind {
		case domain.KindText, domain.KindImage:
			s.relay.Route(s, frame)
		case domain.KindJoinGroup:
			// Join failures were already reported to the client
			_ = s.relay.JoinGroup(s, frame.Target)
		case domain.KindLeaveGroup:
			s.relay.LeaveGroup(s)
		case domain.KindDisconnect:
			s.teardown()
			return
		}
	}
}

// authenticate reads the first frame as the claimed username and registers
// the session. Any failure here closes the connection before it ever
// becomes visible to other sessions.
func (s *Session) authenticate() bool {
	name, err := s.channel.Receive()
	if err != nil {
		s.log.Debug("Connection dropped before handshake", "err", err)
		return false
	}

	if err := auth.ValidateUsername(name); err != nil {
		s.log.Info("Rejected handshake", "err", err)
		_ = s.channel.Send(domain.ErrorFrame("Invalid username").Encode())
		return false
	}

	s.username = name
	s.log = s.log.With("user", name)

	if err := s.relay.Register(s); err != nil {
		s.log.Info("Rejected handshake", "err", err)
		_ = s.channel.Send(domain.ErrorFrame("Username already taken: " + name).Encode())
		return false
	}

	s.state.Store(int32(StateAuthenticated))
	s.log.Info("Session authenticated", "addr", s.channel.RemoteAddr())
	return true
}

// teardown runs the disconnect sequence exactly once, whatever mix of
// DISCONNECT frame, transport failure, or protocol error got us here.
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		s.state.Store(int32(StateDisconnected))
		s.relay.Disconnect(s)
		s.log.Info("Session disconnected")
	})
}
