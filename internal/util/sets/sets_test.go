package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := New("a", "b")
	require.True(t, s.Has("a"))
	require.False(t, s.Has("c"))
	s.Add("c")
	require.True(t, s.Has("c"))
	s.Delete("a")
	require.False(t, s.Has("a"))
}

func TestAppendMissingKeepsFirstSeenOrder(t *testing.T) {
	seen := New[string]()
	union := AppendMissing(seen, nil, "x", "y")
	union = AppendMissing(seen, union, "y", "z")
	require.Equal(t, []string{"x", "y", "z"}, union)
}
