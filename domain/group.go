package domain

// Group is a named, capacity-bounded set of usernames.
// It is a plain value: all locking happens in the registry that owns it.
type Group struct {
	Name     string
	Capacity int
	members  map[string]struct{}
}

func NewGroup(name string, capacity int) *Group {
	return &Group{
		Name:     name,
		Capacity: capacity,
		members:  make(map[string]struct{}),
	}
}

func (g *Group) Add(username string) {
	g.members[username] = struct{}{}
}

func (g *Group) Remove(username string) {
	delete(g.members, username)
}

func (g *Group) Has(username string) bool {
	_, ok := g.members[username]
	return ok
}

func (g *Group) IsFull() bool {
	return len(g.members) >= g.Capacity
}

func (g *Group) IsEmpty() bool {
	return len(g.members) == 0
}

func (g *Group) Size() int {
	return len(g.members)
}

// Members returns a snapshot of the member set so that a broadcast can
// iterate without holding the registry lock for the whole send.
func (g *Group) Members() []string {
	out := make([]string, 0, len(g.members))
	for m := range g.members {
		out = append(out, m)
	}
	return out
}
