package runtime

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

func TestUserRegistry_RegisterAndLookup(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry(slog.Default())
	alice := newFakeMember("Alice")

	// Given an empty registry
	req.Empty(registry.Usernames())

	// When a session registers
	req.NoError(registry.Register(alice))

	// Then it is reachable under its name
	found, ok := registry.Lookup("Alice")
	req.True(ok)
	req.Equal(alice, found)
	req.Equal([]string{"Alice"}, registry.Usernames())
}

func TestUserRegistry_DuplicateUsernameRejected(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry(slog.Default())
	first := newFakeMember("Alice")
	second := newFakeMember("Alice")

	req.NoError(registry.Register(first))

	// When a second session claims the same name
	err := registry.Register(second)

	// Then it is rejected and the first entry is untouched
	req.ErrorIs(err, errors.ErrUsernameTaken)
	found, ok := registry.Lookup("Alice")
	req.True(ok)
	req.Equal(first, found)
}

func TestUserRegistry_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry(slog.Default())
	alice := newFakeMember("Alice")

	req.NoError(registry.Register(alice))
	registry.Unregister("Alice")

	_, ok := registry.Lookup("Alice")
	req.False(ok)
	req.Empty(registry.Usernames())
}

func TestUserRegistry_BroadcastUserList(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry(slog.Default())
	alice := newFakeMember("Alice")
	bob := newFakeMember("Bob")

	req.NoError(registry.Register(alice))
	req.NoError(registry.Register(bob))

	// When the list is broadcast
	registry.BroadcastUserList()

	// Then every session receives all names, its own included
	for _, m := range []*fakeMember{alice, bob} {
		frame, ok := m.lastFrame()
		req.True(ok)
		req.Equal(domain.KindUserList, frame.Kind)
		req.Equal("Alice,Bob", frame.Payload)
	}
}

func TestUserRegistry_BroadcastSkipsFailedSend(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry(slog.Default())
	alice := newFakeMember("Alice")
	broken := newFakeMember("Bob")
	broken.sendErr = errors.ErrChannelClosed

	req.NoError(registry.Register(alice))
	req.NoError(registry.Register(broken))

	// A dead channel must never abort the broadcast
	registry.BroadcastUserList()

	frame, ok := alice.lastFrame()
	req.True(ok)
	req.Equal(domain.KindUserList, frame.Kind)
}
