package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/moderation"
	"chat-relay/observability"
)

func newService(t *testing.T, moderator *moderation.Moderator) (*RelayService, *mocks.MockIUserRegistry, *mocks.MockIGroupRegistry, chan event.DomainEvent) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRegistry(ctrl)
	groups := mocks.NewMockIGroupRegistry(ctrl)
	events := make(chan event.DomainEvent, 16)
	svc := NewRelayService(slog.Default(), users, groups, moderator, observability.NewMonitoringManager(), events, "General")
	return svc, users, groups, events
}

func sender(t *testing.T, name string) *mocks.MockMember {
	t.Helper()
	m := mocks.NewMockMember(gomock.NewController(t))
	m.EXPECT().Username().Return(name).AnyTimes()
	return m
}

func TestRelayService_RegisterRunsHandshakeSequence(t *testing.T) {
	req := require.New(t)
	svc, users, groups, events := newService(t, nil)
	alice := sender(t, "Alice")

	// Then the directory entry, the broadcast, and the default join happen in order
	gomock.InOrder(
		users.EXPECT().Register(alice).Return(nil),
		users.EXPECT().BroadcastUserList(),
		groups.EXPECT().Join(alice, "General").Return(nil),
	)

	req.NoError(svc.Register(alice))

	evt := <-events
	connected, ok := evt.(event.UserConnected)
	req.True(ok)
	req.Equal("Alice", connected.Username)
}

func TestRelayService_RegisterRejectsDuplicate(t *testing.T) {
	req := require.New(t)
	svc, users, _, events := newService(t, nil)
	alice := sender(t, "Alice")

	users.EXPECT().Register(alice).Return(errors.ErrUsernameTaken)

	err := svc.Register(alice)

	req.ErrorIs(err, errors.ErrUsernameTaken)
	req.Empty(events)
}

func TestRelayService_DisconnectSequence(t *testing.T) {
	req := require.New(t)
	svc, users, groups, events := newService(t, nil)
	alice := sender(t, "Alice")

	// Leave first, then unregister, then tell everyone who is left
	gomock.InOrder(
		groups.EXPECT().Leave(alice),
		users.EXPECT().Unregister("Alice"),
		users.EXPECT().BroadcastUserList(),
	)

	svc.Disconnect(alice)

	evt := <-events
	_, ok := evt.(event.UserDisconnected)
	req.True(ok)
}

func TestRelayService_RouteGroupMessage(t *testing.T) {
	req := require.New(t)
	svc, _, groups, events := newService(t, nil)
	alice := sender(t, "Alice")

	groups.EXPECT().
		Broadcast("General", gomock.Any(), "Alice").
		DoAndReturn(func(_ string, frame domain.Frame, _ string) (int, error) {
			req.Equal("TEXT|GROUP|General|Alice|hi", frame.Encode())
			return 1, nil
		})

	svc.Route(alice, domain.Frame{
		Kind: domain.KindText, Mode: domain.ModeGroup,
		Target: "General", Sender: "Alice", Payload: "hi",
	})

	evt := <-events
	routed, ok := evt.(event.MessageRouted)
	req.True(ok)
	req.Equal(1, routed.Recipients)
}

func TestRelayService_RouteGroupNotFound(t *testing.T) {
	req := require.New(t)
	svc, _, groups, _ := newService(t, nil)
	alice := sender(t, "Alice")

	groups.EXPECT().Broadcast("nowhere", gomock.Any(), "Alice").Return(0, errors.ErrGroupNotFound)
	alice.EXPECT().Send(domain.ErrorFrame("Group not found: nowhere")).Return(nil)

	svc.Route(alice, domain.Frame{
		Kind: domain.KindText, Mode: domain.ModeGroup,
		Target: "nowhere", Sender: "Alice", Payload: "hi",
	})

	req.Equal(uint64(1), svc.monitoring.GetLatest().RoutingErrors)
}

func TestRelayService_RouteIndividual(t *testing.T) {
	req := require.New(t)
	svc, users, _, _ := newService(t, nil)
	alice := sender(t, "Alice")
	bob := sender(t, "Bob")

	users.EXPECT().Lookup("Bob").Return(bob, true)
	bob.EXPECT().
		Send(gomock.Any()).
		DoAndReturn(func(frame domain.Frame) error {
			// The recipient field is left blank on purpose
			req.Equal("TEXT|INDIVIDUAL|Alice||hey", frame.Encode())
			return nil
		})

	svc.Route(alice, domain.Frame{
		Kind: domain.KindText, Mode: domain.ModeIndividual,
		Target: "Bob", Sender: "Alice", Payload: "hey",
	})
}

func TestRelayService_RouteIndividualUnknownRecipient(t *testing.T) {
	req := require.New(t)
	svc, users, _, _ := newService(t, nil)
	alice := sender(t, "Alice")

	users.EXPECT().Lookup("Carol").Return(nil, false)
	// The silent drop of the original relay is promoted to a routing error
	alice.EXPECT().Send(domain.ErrorFrame("User not found: Carol")).Return(nil)

	svc.Route(alice, domain.Frame{
		Kind: domain.KindText, Mode: domain.ModeIndividual,
		Target: "Carol", Sender: "Alice", Payload: "hey",
	})

	req.Equal(uint64(1), svc.monitoring.GetLatest().RoutingErrors)
}

func TestRelayService_ModerationCensorsText(t *testing.T) {
	req := require.New(t)
	moderator, err := moderation.NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	svc, _, groups, events := newService(t, &moderator)
	alice := sender(t, "Alice")

	groups.EXPECT().
		Broadcast("General", gomock.Any(), "Alice").
		DoAndReturn(func(_ string, frame domain.Frame, _ string) (int, error) {
			req.Equal("you *****", frame.Payload)
			return 1, nil
		})

	svc.Route(alice, domain.Frame{
		Kind: domain.KindText, Mode: domain.ModeGroup,
		Target: "General", Sender: "Alice", Payload: "you idiot",
	})

	// A Censored event precedes the MessageRouted one
	evt := <-events
	censored, ok := evt.(event.Censored)
	req.True(ok)
	req.Equal(1, censored.Hits)
}

func TestRelayService_ModerationIgnoresImages(t *testing.T) {
	req := require.New(t)
	moderator, err := moderation.NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	svc, _, groups, _ := newService(t, &moderator)
	alice := sender(t, "Alice")

	// IMAGE payloads are opaque: the censor must never touch them
	groups.EXPECT().
		Broadcast("General", gomock.Any(), "Alice").
		DoAndReturn(func(_ string, frame domain.Frame, _ string) (int, error) {
			req.Equal("aWRpb3Q=", frame.Payload)
			return 1, nil
		})

	svc.Route(alice, domain.Frame{
		Kind: domain.KindImage, Mode: domain.ModeGroup,
		Target: "General", Sender: "Alice", Payload: "aWRpb3Q=",
	})
}
