package test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/client"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
)

// startRelay runs the whole stack on an ephemeral port and returns its address.
func startRelay(t *testing.T) string {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := observability.NewMonitoringManager()

	users := runtime.NewUserRegistry(log)
	groups := runtime.NewGroupRegistry(users, 5, log)

	domainEvents := make(chan event.DomainEvent, 64)
	telemetryChan := make(chan event.Event, 16)

	timeline := sink.NewTimeline(100)
	fanout := workers.NewEventFanout(log, domainEvents).
		Add(timeline, sink.NewLogSink(log))

	relay := services.NewRelayService(log, users, groups, nil, monitoring, domainEvents, "General")
	listener := runtime.NewListener(log, "127.0.0.1:0", relay, monitoring)

	supervisor := workers.NewSupervisor(log, telemetryChan, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go supervisor.Add(listener, fanout).Run(ctx)
	t.Cleanup(cancel)

	readyCtx, readyCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readyCancel()
	addr, err := listener.WaitReady(readyCtx)
	require.NoError(t, err)
	return addr.String()
}

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t)

	// When Alice connects
	alice, err := client.Dial(addr, "Alice")
	req.NoError(err)
	t.Cleanup(func() { _ = alice.Close() })

	// Then she is in the directory and in the default group
	frame, err := alice.ReceiveKind(domain.KindUserList)
	req.NoError(err)
	req.Equal("Alice", frame.Field(0))

	frame, err = alice.ReceiveKind(domain.KindGroupList)
	req.NoError(err)
	req.Equal("General", frame.Field(0))

	// And she sees her own arrival notice
	frame, err = alice.ReceiveKind(domain.KindText)
	req.NoError(err)
	req.Equal("TEXT|GROUP|General|System|Alice has joined the group", frame.Raw)

	// When Bob connects
	bob, err := client.Dial(addr, "Bob")
	req.NoError(err)
	t.Cleanup(func() { _ = bob.Close() })

	_, err = bob.ReceiveKind(domain.KindGroupList)
	req.NoError(err)

	// Then Alice learns about Bob twice, directory then group
	frame, err = alice.ReceiveKind(domain.KindUserList)
	req.NoError(err)
	req.ElementsMatch([]string{"Alice", "Bob"}, splitList(frame.Field(0)))

	frame, err = alice.ReceiveKind(domain.KindText)
	req.NoError(err)
	req.Equal("Bob has joined the group", frame.Field(3))

	// When Alice posts to the group
	req.NoError(alice.SendText(domain.ModeGroup, "General", "hello Bob"))

	// Then Bob receives it and Alice gets no echo of her own message
	frame, err = bob.ReceiveKind(domain.KindText)
	req.NoError(err)
	for frame.Field(2) == "System" {
		frame, err = bob.ReceiveKind(domain.KindText)
		req.NoError(err)
	}
	req.Equal("TEXT|GROUP|General|Alice|hello Bob", frame.Raw)

	// When Bob replies privately
	req.NoError(bob.SendText(domain.ModeIndividual, "Alice", "hi back"))

	frame, err = alice.ReceiveKind(domain.KindText)
	req.NoError(err)
	req.Equal("TEXT|INDIVIDUAL|Bob||hi back", frame.Raw)

	// When Bob messages someone who does not exist
	req.NoError(bob.SendText(domain.ModeIndividual, "Carol", "anyone there?"))

	frame, err = bob.ReceiveKind(domain.KindError)
	req.NoError(err)
	req.Equal("ERROR|User not found: Carol", frame.Raw)

	// When Bob moves to another group
	req.NoError(bob.JoinGroup("Tech"))

	// Then Alice is told he left General
	frame, err = alice.ReceiveKind(domain.KindText)
	req.NoError(err)
	req.Equal("TEXT|GROUP|General|System|Bob has left the group", frame.Raw)

	// And Bob sees the group list twice, after the leave then after the join
	for range 2 {
		frame, err = bob.ReceiveKind(domain.KindGroupList)
		req.NoError(err)
		req.ElementsMatch([]string{"General", "Tech"}, splitList(frame.Field(0)))
	}

	// When Bob disconnects
	req.NoError(bob.Disconnect())

	// Then Alice's directory shrinks back to herself
	for {
		frame, err = alice.ReceiveKind(domain.KindUserList)
		req.NoError(err)
		if frame.Field(0) == "Alice" {
			break
		}
	}
}

func Test_DuplicateUsernameRejected(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t)

	alice, err := client.Dial(addr, "Alice")
	req.NoError(err)
	t.Cleanup(func() { _ = alice.Close() })

	_, err = alice.ReceiveKind(domain.KindGroupList)
	req.NoError(err)

	// When a second connection claims the same name
	impostor, err := client.Dial(addr, "Alice")
	req.NoError(err)
	t.Cleanup(func() { _ = impostor.Close() })

	// Then it is refused and closed; the first session is untouched
	frame, err := impostor.Receive()
	req.NoError(err)
	req.Equal("ERROR|Username already taken: Alice", frame.Raw)

	_, err = impostor.Receive()
	req.Error(err)

	req.NoError(alice.SendText(domain.ModeGroup, "General", "still here"))
}

func Test_GroupCapacity(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t)

	names := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, name := range names {
		c, err := client.Dial(addr, name)
		req.NoError(err)
		t.Cleanup(func() { _ = c.Close() })
		_, err = c.ReceiveKind(domain.KindGroupList)
		req.NoError(err)
	}

	// When a sixth member tries to enter the full default group
	sixth, err := client.Dial(addr, "u6")
	req.NoError(err)
	t.Cleanup(func() { _ = sixth.Close() })

	// Then the join is refused but the session survives without a group
	frame, err := sixth.ReceiveKind(domain.KindError)
	req.NoError(err)
	req.Equal("ERROR|Group is full (max 5 members)", frame.Raw)

	// And it can still join a fresh group
	req.NoError(sixth.JoinGroup("Overflow"))
	frame, err = sixth.ReceiveKind(domain.KindText)
	req.NoError(err)
	req.Equal("TEXT|GROUP|Overflow|System|u6 has joined the group", frame.Raw)
}

func splitList(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, ",")
}
