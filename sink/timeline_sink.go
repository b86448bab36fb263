package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chat-relay/domain/event"
)

// Entry is one line of the activity timeline shown on the inspect page.
type Entry struct {
	At   time.Time
	Text string
}

// Timeline keeps the most recent relay activity in memory, bounded.
// It is a pure observability aid: nothing reads it on the routing path.
type Timeline struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

func NewTimeline(limit int) *Timeline {
	return &Timeline{limit: limit}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	entry, ok := describe(e)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.limit {
		t.entries = t.entries[len(t.entries)-t.limit:]
	}
	return nil
}

// Recent returns the timeline newest-first.
func (t *Timeline) Recent() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[len(t.entries)-1-i] = e
	}
	return out
}

func describe(e event.DomainEvent) (Entry, bool) {
	switch evt := e.(type) {
	case event.UserConnected:
		return Entry{evt.At, fmt.Sprintf("%s connected", evt.Username)}, true
	case event.UserDisconnected:
		return Entry{evt.At, fmt.Sprintf("%s disconnected", evt.Username)}, true
	case event.GroupJoined:
		return Entry{evt.At, fmt.Sprintf("%s joined %s", evt.Username, evt.Group)}, true
	case event.GroupLeft:
		return Entry{evt.At, fmt.Sprintf("%s left %s", evt.Username, evt.Group)}, true
	case event.MessageRouted:
		return Entry{evt.At, fmt.Sprintf("%s -> %s %s (%s, %d recipients)",
			evt.Sender, evt.Mode, evt.Target, evt.Kind, evt.Recipients)}, true
	case event.Censored:
		return Entry{evt.At, fmt.Sprintf("censored message from %s (lang=%s, hits=%d)",
			evt.Sender, evt.Lang, evt.Hits)}, true
	}
	return Entry{}, false
}
