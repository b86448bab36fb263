package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup_CapacityBound(t *testing.T) {
	req := require.New(t)
	g := NewGroup("X", 5)

	// Given five members
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		g.Add(name)
	}

	// Then the group reports full
	req.True(g.IsFull())
	req.Equal(5, g.Size())

	// And adding the same member again does not grow it
	g.Add("a")
	req.Equal(5, g.Size())
}

func TestGroup_RemoveUntilEmpty(t *testing.T) {
	req := require.New(t)
	g := NewGroup("Y", 5)

	g.Add("a")
	g.Add("b")
	req.False(g.IsEmpty())

	g.Remove("a")
	g.Remove("b")
	req.True(g.IsEmpty())
	req.False(g.Has("a"))
}

func TestGroup_MembersSnapshot(t *testing.T) {
	req := require.New(t)
	g := NewGroup("Z", 5)
	g.Add("a")

	members := g.Members()
	g.Add("b")

	// The snapshot is detached from later mutations
	req.Len(members, 1)
	req.Equal(2, g.Size())
}
