package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocReusesFreedSlot(t *testing.T) {
	p := NewSized[int](2)

	h1 := p.Alloc(1)
	h2 := p.Alloc(2)
	require.Equal(t, 1, *h1.Value())
	require.Equal(t, 2, *h2.Value())

	h1.Free()
	h3 := p.Alloc(3)
	require.Equal(t, 3, *h3.Value())

	stats := p.Stats()
	require.EqualValues(t, 3, stats.Allocs)
	require.EqualValues(t, 1, stats.Frees)
	require.EqualValues(t, 0, stats.Overflows)
	require.Equal(t, 2, stats.LiveInline)
}

func TestAllocOverflowsToHeap(t *testing.T) {
	p := NewSized[string](1)

	h1 := p.Alloc("a")
	h2 := p.Alloc("b")

	require.Equal(t, "a", *h1.Value())
	require.Equal(t, "b", *h2.Value())

	stats := p.Stats()
	require.EqualValues(t, 1, stats.Overflows)

	h2.Free()
	require.Nil(t, h2.Value())
}

func TestDoubleFreeIsSafe(t *testing.T) {
	p := NewSized[int](1)
	h := p.Alloc(42)
	h.Free()
	require.NotPanics(t, h.Free)
}

func TestFreedSlotGenerationAdvances(t *testing.T) {
	p := NewSized[int](1)
	h1 := p.Alloc(1)
	h1.Free()
	h2 := p.Alloc(2)

	// h1's generation no longer matches the slot's current occupant, so
	// freeing it again (a stale double-free through an old handle) is a
	// silent no-op rather than corrupting h2's slot.
	h1.Free()
	require.Equal(t, 2, *h2.Value())
}
