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

// GroupRegistry is the process-wide group directory. Groups are created
// lazily on first join and deleted the moment they become empty, so a group
// exists if and only if it has members.
//
// One mutex covers every logical operation: the capacity check, the
// leave-then-join switch, and the membership snapshot a broadcast starts
// from can never interleave with another mutation. Frame sends always
// happen after the lock is released.
type GroupRegistry struct {
	mu       sync.Mutex
	groups   map[string]*domain.Group
	users    contract.IUserRegistry
	capacity int
	log      *slog.Logger
}

func NewGroupRegistry(users contract.IUserRegistry, capacity int, log *slog.Logger) *GroupRegistry {
	return &GroupRegistry{
		groups:   make(map[string]*domain.Group),
		users:    users,
		capacity: capacity,
		log:      log,
	}
}

// Join moves the session into the named group, leaving its previous group
// first if it had one. A full group rejects the join with no state change.
func (r *GroupRegistry) Join(m contract.Member, name string) error {
	r.mu.Lock()

	g, ok := r.groups[name]
	if !ok {
		g = domain.NewGroup(name, r.capacity)
	}

	// A rejected join must leave no trace: the group is only inserted
	// into the map once the capacity check has passed.
	if g.IsFull() && !g.Has(m.Username()) {
		r.mu.Unlock()
		if err := m.Send(domain.ErrorFrame(fmt.Sprintf("Group is full (max %d members)", r.capacity))); err != nil {
			r.log.Debug("Error sending group full message", "to", m.Username(), "err", err)
		}
		return fmt.Errorf("%w: %q", errors.ErrGroupFull, name)
	}
	if !ok {
		r.groups[name] = g
	}

	var departure []string
	var previous string
	var namesAfterLeave []string
	if current := m.CurrentGroup(); current != "" && current != name {
		previous = current
		departure = r.removeLocked(m, current)
		namesAfterLeave = r.namesLocked()
	}

	g.Add(m.Username())
	m.SetCurrentGroup(name)
	joined := g.Members()
	names := r.namesLocked()
	r.mu.Unlock()

	// Same frame order as the historical relay: departure notice and group
	// list for the implicit leave, then the list and join notice for the join.
	if previous != "" {
		r.sendToMembers(departure, domain.SystemNotice(previous, m.Username()+" has left the group"))
		r.sendGroupList(m, namesAfterLeave)
	}
	r.sendGroupList(m, names)
	r.sendToMembers(joined, domain.SystemNotice(name, m.Username()+" has joined the group"))
	return nil
}

// Leave removes the session from its current group. No-op when it has none.
func (r *GroupRegistry) Leave(m contract.Member) {
	r.mu.Lock()
	current := m.CurrentGroup()
	if current == "" {
		r.mu.Unlock()
		return
	}
	departure := r.removeLocked(m, current)
	names := r.namesLocked()
	r.mu.Unlock()

	r.sendToMembers(departure, domain.SystemNotice(current, m.Username()+" has left the group"))
	r.sendGroupList(m, names)
}

// Broadcast sends the frame to every currently-registered member of the
// group except the excluded username (the sender never gets its own echo;
// pass "" to reach everyone). A member that already disconnected is
// skipped, never fatal.
func (r *GroupRegistry) Broadcast(name string, frame domain.Frame, exclude string) (int, error) {
	r.mu.Lock()
	g, ok := r.groups[name]
	if !ok {
		r.mu.Unlock()
		return 0, fmt.Errorf("%w: %q", errors.ErrGroupNotFound, name)
	}
	members := g.Members()
	r.mu.Unlock()

	if exclude != "" {
		members = lo.Without(members, exclude)
	}
	return r.sendToMembers(members, frame), nil
}

// Names returns all known group names, sorted.
func (r *GroupRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

// Snapshot returns group name -> member usernames, for inspection only.
func (r *GroupRegistry) Snapshot() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]string, len(r.groups))
	for name, g := range r.groups {
		members := g.Members()
		sort.Strings(members)
		out[name] = members
	}
	return out
}

// removeLocked takes the session out of the named group and cleans up the
// group entry when it becomes empty. It returns the remaining members that
// should receive the departure notice, nil when the group vanished.
func (r *GroupRegistry) removeLocked(m contract.Member, name string) []string {
	g, ok := r.groups[name]
	if !ok {
		m.SetCurrentGroup("")
		return nil
	}
	g.Remove(m.Username())
	m.SetCurrentGroup("")
	if g.IsEmpty() {
		delete(r.groups, name)
		return nil
	}
	return g.Members()
}

func (r *GroupRegistry) namesLocked() []string {
	names := lo.Keys(r.groups)
	sort.Strings(names)
	return names
}

func (r *GroupRegistry) sendGroupList(m contract.Member, names []string) {
	if err := m.Send(domain.GroupList(names)); err != nil {
		r.log.Debug("Error updating group list", "to", m.Username(), "err", err)
	}
}

func (r *GroupRegistry) sendToMembers(usernames []string, frame domain.Frame) int {
	sent := 0
	for _, username := range usernames {
		member, ok := r.users.Lookup(username)
		if !ok {
			// Already disconnected, the next registry mutation cleans it up
			continue
		}
		if err := member.Send(frame); err != nil {
			r.log.Debug("Error broadcasting to group member", "to", username, "err", err)
			continue
		}
		sent++
	}
	return sent
}
