// Package runtime holds the relay's shared state and per-connection
// machinery: the user and group registries, the session state machine,
// and the accept loop. It contains no business rules about frame contents.
package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
)

// UserRegistry is the process-wide username -> session directory.
// Every mutation is atomic with respect to the others; the map never
// escapes, only snapshots do.
type UserRegistry struct {
	mu       sync.RWMutex
	sessions map[string]contract.Member
	log      *slog.Logger
}

func NewUserRegistry(log *slog.Logger) *UserRegistry {
	return &UserRegistry{
		sessions: make(map[string]contract.Member),
		log:      log,
	}
}

// Register inserts the session under its username. A name that is already
// live is rejected: silently replacing the previous entry would orphan a
// running connection.
func (r *UserRegistry) Register(m contract.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[m.Username()]; exists {
		return fmt.Errorf("%w: %q", errors.ErrUsernameTaken, m.Username())
	}
	r.sessions[m.Username()] = m
	return nil
}

func (r *UserRegistry) Unregister(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username)
}

func (r *UserRegistry) Lookup(username string) (contract.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.sessions[username]
	return m, ok
}

// Usernames returns the sorted registry key set.
func (r *UserRegistry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.sessions)
	sort.Strings(names)
	return names
}

// BroadcastUserList sends every connected session a USER_LIST frame with
// all registered usernames, the recipient's own included. The snapshot is
// taken under the lock; the sends happen outside it so a slow client can
// never stall a registration.
func (r *UserRegistry) BroadcastUserList() {
	r.mu.RLock()
	members := lo.Values(r.sessions)
	names := lo.Keys(r.sessions)
	r.mu.RUnlock()

	sort.Strings(names)
	frame := domain.UserList(names)
	for _, m := range members {
		if err := m.Send(frame); err != nil {
			r.log.Debug("Error sending user list", "to", m.Username(), "err", err)
		}
	}
}
