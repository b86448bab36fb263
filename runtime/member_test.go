package runtime

import (
	"sync"

	"chat-relay/domain"
)

// fakeMember records every frame a registry forwards to it.
type fakeMember struct {
	name string

	mu      sync.Mutex
	group   string
	frames  []domain.Frame
	sendErr error
}

func newFakeMember(name string) *fakeMember {
	return &fakeMember{name: name}
}

func (m *fakeMember) Username() string { return m.name }

func (m *fakeMember) CurrentGroup() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.group
}

func (m *fakeMember) SetCurrentGroup(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group = name
}

func (m *fakeMember) Send(f domain.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *fakeMember) sent() []domain.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

func (m *fakeMember) lastFrame() (domain.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return domain.Frame{}, false
	}
	return m.frames[len(m.frames)-1], true
}
