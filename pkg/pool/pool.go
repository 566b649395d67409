// Package pool implements the small-object pool allocator used for cell
// headers (Proxy) and typed cell bodies (Holder). Each pool serves one
// concrete slot type: a small in-line buffer is handed out first, and the
// pool spills to the system allocator once the buffer is exhausted.
package pool

import "sync"

// defaultBufferSize is the number of in-line slots kept per pool before
// falling back to the heap. Mirrors the buffer size recommended for the
// cell allocator: big enough to absorb a typical call-chain's worth of
// temporaries without forcing a heap round trip.
const defaultBufferSize = 64

// generation guards against a freed slot being used through a stale handle.
// It is bumped every time a slot is recycled so a lingering reference to the
// old contents can be told apart from the slot's current occupant.
type generation uint64

// slot is one in-line buffer entry.
type slot[T any] struct {
	value    T
	gen      generation
	inUse    bool
}

// Pool is a fixed-size freelist for values of type T, with heap overflow.
//
// Pool is not safe for concurrent use by multiple goroutines without the
// caller's own synchronization at a higher level; the mutex here only
// protects the free-list bookkeeping itself, matching the single-threaded
// execution model the interpreter relies on (see the execution context's
// cooperative scheduling).
type Pool[T any] struct {
	mu       sync.Mutex
	buffer   []slot[T]
	free     []int // indices into buffer that are available
	overflow int    // count of allocations served by the heap
	stats    Stats
}

// Stats reports pool utilization, exposed to the `runtime` built-in namespace.
type Stats struct {
	Allocs     int64
	Frees      int64
	Overflows  int64
	LiveInline int
}

// New creates a pool with the recommended in-line buffer size.
func New[T any]() *Pool[T] {
	return NewSized[T](defaultBufferSize)
}

// NewSized creates a pool with an explicit in-line buffer size.
func NewSized[T any](size int) *Pool[T] {
	p := &Pool[T]{
		buffer: make([]slot[T], size),
		free:   make([]int, size),
	}
	for i := range p.free {
		p.free[i] = size - 1 - i
	}
	return p
}

// Handle is an owning pointer returned by Alloc. It records whether the
// value lives in the pool's in-line buffer (so Free can recycle the slot)
// or was spilled to the heap (so Free simply drops the reference).
type Handle[T any] struct {
	value    *T
	pool     *Pool[T]
	index    int // -1 when heap-allocated
	gen      generation
}

// Alloc constructs a value in a slot and returns an owning handle.
func (p *Pool[T]) Alloc(init T) *Handle[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Allocs++
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		s := &p.buffer[idx]
		s.value = init
		s.inUse = true
		s.gen++
		return &Handle[T]{value: &s.value, pool: p, index: idx, gen: s.gen}
	}

	p.stats.Overflows++
	v := init
	return &Handle[T]{value: &v, pool: p, index: -1}
}

// Value returns the pointer to the owned value.
func (h *Handle[T]) Value() *T {
	return h.value
}

// Free releases the slot (or the heap allocation) backing the handle. The
// caller must not use the handle's value pointer after Free returns.
func (h *Handle[T]) Free() {
	if h.index < 0 {
		h.value = nil
		return
	}
	p := h.pool
	p.mu.Lock()
	defer p.mu.Unlock()

	s := &p.buffer[h.index]
	if !s.inUse || s.gen != h.gen {
		// Already freed through this or an aliasing handle; double-free is a
		// caller bug but must not corrupt the free list.
		return
	}
	s.inUse = false
	var zero T
	s.value = zero
	p.free = append(p.free, h.index)
	p.stats.Frees++
	h.value = nil
}

// Stats returns a snapshot of allocator statistics.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := 0
	for i := range p.buffer {
		if p.buffer[i].inUse {
			live++
		}
	}
	snap := p.stats
	snap.LiveInline = live
	return snap
}
