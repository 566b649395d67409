// Package registry populates the execution context's built-in type
// descriptors and extension namespaces: char, number, boolean, pointer,
// string, list, array, pair, hash_map, plus the math/iostream/system/
// runtime/exception namespaces installed as top-level bindings.
package registry

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"covlang/pkg/cell"
)

// Number is the Language's single numeric type — a float64 wide enough to
// represent both integers and fractional values, the way a dynamically
// typed scripting language typically collapses int/float into one kind at
// the value-representation layer (arithmetic promotion happens in
// pkg/interp, not here).
type Number float64

// Char is a single Unicode code point.
type Char rune

// Boolean is the Language's boolean payload type.
type Boolean bool

// Pointer is an opaque reference payload; NullPointer is its zero value.
type Pointer struct {
	Target *cell.Any
}

// NullPointer is the pointer type's default-constructed value.
var NullPointer = Pointer{}

// List is a growable, ordered container of Cells (the Language's `list`).
type List struct {
	items []*cell.Any
}

// NewList builds a List from already-owned Cells.
func NewList(items ...*cell.Any) *List {
	return &List{items: append([]*cell.Any{}, items...)}
}

// Items returns the list's backing Cells. Callers must not retain the
// returned slice past a structural mutation of the List.
func (l *List) Items() []*cell.Any { return l.items }

// Push appends a Cell onto the end of the list.
func (l *List) Push(c *cell.Any) { l.items = append(l.items, c) }

// Array is the Language's fixed-size sibling to List: indexable, but its
// length does not change after construction.
type Array struct {
	items []*cell.Any
}

// NewArray builds an Array of the given size, filling every slot with Nil.
func NewArray(size int) *Array {
	items := make([]*cell.Any, size)
	for i := range items {
		items[i] = &cell.Any{}
	}
	return &Array{items: items}
}

// Items returns the array's backing Cells.
func (a *Array) Items() []*cell.Any { return a.items }

// Pair is a 2-tuple of Cells.
type Pair struct {
	First, Second *cell.Any
}

// HashMap is the Language's `hash_map`: Cell keys to Cell values. User
// keys are Cells hashed via cell.Any.Hash, but a Go map
// needs a comparable key, so the bucket key is the pre-computed hash and
// collisions are resolved by a linear scan — small enough in practice that
// this beats pulling in a full open-addressing table for the job.
type HashMap struct {
	buckets map[uint64][]hmEntry
}

type hmEntry struct {
	key   *cell.Any
	value *cell.Any
}

// NewHashMap builds an empty hash map.
func NewHashMap() *HashMap {
	return &HashMap{buckets: make(map[uint64][]hmEntry)}
}

// Set inserts or replaces the value bound to key.
func (m *HashMap) Set(key, value *cell.Any) {
	h := key.Hash()
	bucket := m.buckets[h]
	for i, e := range bucket {
		if e.key.Compare(key) {
			bucket[i].value = value
			return
		}
	}
	m.buckets[h] = append(bucket, hmEntry{key: key, value: value})
}

// Get looks up the value bound to key.
func (m *HashMap) Get(key *cell.Any) (*cell.Any, bool) {
	for _, e := range m.buckets[key.Hash()] {
		if e.key.Compare(key) {
			return e.value, true
		}
	}
	return nil, false
}

// Len returns the number of entries in the map.
func (m *HashMap) Len() int {
	n := 0
	for _, b := range m.buckets {
		n += len(b)
	}
	return n
}

func registerPrimitiveOps() {
	cell.RegisterOps(&cell.Ops[Char]{
		TypeName: "char",
		Equal:    func(a, b Char) bool { return a == b },
		Integer:  func(v Char) int64 { return int64(v) },
		String:   func(v Char) string { return string(rune(v)) },
		Hash:     func(v Char) uint64 { return uint64(v) },
		Detach:   func(v *Char) {},
		Ext:      func() (cell.Namespace, bool) { return charExt, true },
	})

	cell.RegisterOps(&cell.Ops[Number]{
		TypeName: "number",
		Equal:    func(a, b Number) bool { return a == b },
		Integer:  func(v Number) int64 { return int64(v) },
		String:   func(v Number) string { return formatNumber(v) },
		Hash:     func(v Number) uint64 { return math.Float64bits(float64(v)) },
		Detach:   func(v *Number) {},
		Ext:      func() (cell.Namespace, bool) { return nil, false },
	})

	cell.RegisterOps(&cell.Ops[Boolean]{
		TypeName: "boolean",
		Equal:    func(a, b Boolean) bool { return a == b },
		Integer:  func(v Boolean) int64 { if v { return 1 }; return 0 },
		String:   func(v Boolean) string { if v { return "true" }; return "false" },
		Hash:     func(v Boolean) uint64 { if v { return 1 }; return 0 },
		Detach:   func(v *Boolean) {},
		Ext:      func() (cell.Namespace, bool) { return nil, false },
	})

	cell.RegisterOps(&cell.Ops[Pointer]{
		TypeName: "pointer",
		Equal:    func(a, b Pointer) bool { return a.Target.IsSame(b.Target) },
		Integer:  func(v Pointer) int64 { return 0 },
		String:   func(v Pointer) string { if v.Target.Usable() { return "#<pointer>" }; return "#<null pointer>" },
		Hash:     func(v Pointer) uint64 { return stringHash(fmt.Sprintf("%p", v.Target)) },
		Detach:   func(v *Pointer) {},
		Ext:      func() (cell.Namespace, bool) { return nil, false },
	})

	cell.RegisterOps(&cell.Ops[string]{
		TypeName: "string",
		Equal:    func(a, b string) bool { return a == b },
		Integer:  func(v string) int64 { return int64(len(v)) },
		String:   func(v string) string { return v },
		Hash:     func(v string) uint64 { return stringHash(v) },
		Detach:   func(v *string) {},
		Ext:      func() (cell.Namespace, bool) { return stringExt, true },
	})

	cell.RegisterOps(&cell.Ops[List]{
		TypeName: "list",
		Equal:    func(a, b List) bool { return equalItems(a.items, b.items) },
		Integer:  func(v List) int64 { return int64(len(v.items)) },
		String:   func(v List) string { return stringifyContainer(v.items) },
		Hash:     func(v List) uint64 { return hashContainer(v.items) },
		Detach:   func(v *List) { detachContainer(v.items) },
		Ext:      func() (cell.Namespace, bool) { return listExt, true },
	})

	cell.RegisterOps(&cell.Ops[Array]{
		TypeName: "array",
		Equal:    func(a, b Array) bool { return equalItems(a.items, b.items) },
		Integer:  func(v Array) int64 { return int64(len(v.items)) },
		String:   func(v Array) string { return stringifyContainer(v.items) },
		Hash:     func(v Array) uint64 { return hashContainer(v.items) },
		Detach:   func(v *Array) { detachContainer(v.items) },
		Ext:      func() (cell.Namespace, bool) { return arrayExt, true },
	})

	cell.RegisterOps(&cell.Ops[Pair]{
		TypeName: "pair",
		Equal: func(a, b Pair) bool {
			return a.First.Compare(b.First) && a.Second.Compare(b.Second)
		},
		Integer: func(v Pair) int64 { return 2 },
		String: func(v Pair) string {
			return fmt.Sprintf("(%s, %s)", v.First.ToString(), v.Second.ToString())
		},
		Hash:   func(v Pair) uint64 { return v.First.Hash() ^ v.Second.Hash()*31 },
		Detach: func(v *Pair) { v.First.Detach(); v.Second.Detach() },
		Ext:    func() (cell.Namespace, bool) { return pairExt, true },
	})

	cell.RegisterOps(&cell.Ops[HashMap]{
		TypeName: "hash_map",
		Equal: func(a, b HashMap) bool {
			if a.Len() != b.Len() {
				return false
			}
			for _, bucket := range a.buckets {
				for _, e := range bucket {
					ov, ok := b.Get(e.key)
					if !ok || !ov.Compare(e.value) {
						return false
					}
				}
			}
			return true
		},
		Integer: func(v HashMap) int64 { return int64(v.Len()) },
		String: func(v HashMap) string {
			var parts []string
			for _, bucket := range v.buckets {
				for _, e := range bucket {
					parts = append(parts, e.key.ToString()+": "+e.value.ToString())
				}
			}
			sort.Strings(parts)
			return "{" + strings.Join(parts, ", ") + "}"
		},
		Hash: func(v HashMap) uint64 {
			var h uint64
			for _, bucket := range v.buckets {
				for _, e := range bucket {
					h ^= e.key.Hash() ^ e.value.Hash()
				}
			}
			return h
		},
		Detach: func(v *HashMap) {
			for _, bucket := range v.buckets {
				for _, e := range bucket {
					e.key.Detach()
					e.value.Detach()
				}
			}
		},
		Ext: func() (cell.Namespace, bool) { return hashMapExt, true },
	})
}

func equalItems(ai, bi []*cell.Any) bool {
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if !ai[i].Compare(bi[i]) {
			return false
		}
	}
	return true
}

func stringifyContainer(items []*cell.Any) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.ToString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func hashContainer(items []*cell.Any) uint64 {
	var h uint64 = 2166136261
	for _, it := range items {
		h = h*16777619 ^ it.Hash()
	}
	return h
}

func detachContainer(items []*cell.Any) {
	for _, it := range items {
		it.Detach()
	}
}

func formatNumber(n Number) string {
	f := float64(n)
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func stringHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
