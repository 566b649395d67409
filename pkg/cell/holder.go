package cell

import "reflect"

// holderIface is the type-erased view every concrete holder[T] satisfies.
// It is the Go expression of the design notes' "tagged variant closed over
// the built-in set plus an open opaque variant carrying a type token and a
// v-table of the six operations" — holder[T] IS that v-table, specialized
// per T by its Ops.
type holderIface interface {
	typ() reflect.Type
	duplicate() holderIface
	compare(other holderIface) bool
	toInteger() int64
	toString() string
	hash() uint64
	detach()
	getExt() (Namespace, bool)
	typeName() string
}

// holder owns exactly one value of concrete type T by value. All operations
// delegate to T's registered Ops.
type holder[T any] struct {
	value T
	ops   *Ops[T]
}

// newHolder constructs a holder for v, resolving T's Ops from the registry.
func newHolder[T any](v T) *holder[T] {
	return &holder[T]{value: v, ops: lookupOps[T]()}
}

func (h *holder[T]) typ() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

// duplicate returns a freshly allocated holder containing a deep copy of
// the value. Container payload types implement value-type copy semantics
// themselves (their Go Equal/Detach copy elements, which are Cells and so
// increment their own Proxy refcounts on copy) — duplicate only needs a Go
// value copy here because Go's assignment already deep-copies structs and
// arrays; slice/map-backed containers must override copy behavior in their
// own type if they want independent backing storage (see pkg/registry).
func (h *holder[T]) duplicate() holderIface {
	return &holder[T]{value: h.value, ops: h.ops}
}

func (h *holder[T]) compare(other holderIface) bool {
	o, ok := other.(*holder[T])
	if !ok {
		return false
	}
	return h.ops.Equal(h.value, o.value)
}

func (h *holder[T]) toInteger() int64 { return h.ops.Integer(h.value) }
func (h *holder[T]) toString() string { return h.ops.String(h.value) }
func (h *holder[T]) hash() uint64     { return h.ops.Hash(h.value) }

func (h *holder[T]) detach() {
	h.ops.Detach(&h.value)
}

func (h *holder[T]) getExt() (Namespace, bool) {
	return h.ops.Ext()
}

func (h *holder[T]) typeName() string {
	if h.ops.TypeName != "" {
		return h.ops.TypeName
	}
	return h.typ().String()
}
