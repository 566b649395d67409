package cell

import (
	"fmt"
	"reflect"
)

// Ops is the per-type free-function table the core requires from every
// payload type: equality, integer/string coercion, hashing, structural
// detach, extension-namespace lookup, and a human-readable type name. A
// built-in type's Ops are supplied by pkg/registry at context construction;
// struct instances of every user-defined struct type share the single
// *Instance Ops that pkg/interp registers (the "opaque" variant of the
// design notes).
type Ops[T any] struct {
	TypeName string
	Equal    func(a, b T) bool
	Integer  func(v T) int64
	String   func(v T) string
	Hash     func(v T) uint64
	// Detach recursively asks any Cells nested inside v to become writable
	// copies of themselves. It is a no-op for value-type primitives.
	Detach func(v *T)
	// Ext returns the extension namespace for T, if any.
	Ext func() (Namespace, bool)
}

var opsRegistry = map[reflect.Type]any{}

// RegisterOps installs the free-function table for T. Built-in types are
// registered by pkg/registry each time it builds a populated registry;
// re-running RegisterOps for the same T simply replaces the table.
func RegisterOps[T any](ops *Ops[T]) {
	var zero T
	opsRegistry[reflect.TypeOf(zero)] = ops
}

// lookupOps returns the registered Ops for T, or a conservative default
// built from fmt/reflect when no type-specific table was registered. The
// default never panics — it degrades to best-effort stringification and
// reflect.DeepEqual equality — so an opaque payload type can still flow
// through the core before the interpreter has registered anything for it.
func lookupOps[T any]() *Ops[T] {
	var zero T
	if v, ok := opsRegistry[reflect.TypeOf(zero)]; ok {
		return v.(*Ops[T])
	}
	return defaultOps[T]()
}

func defaultOps[T any]() *Ops[T] {
	var zero T
	return &Ops[T]{
		TypeName: reflect.TypeOf(zero).String(),
		Equal:    func(a, b T) bool { return reflect.DeepEqual(a, b) },
		Integer:  func(v T) int64 { return 0 },
		String:   func(v T) string { return fmt.Sprintf("%v", v) },
		Hash:     func(v T) uint64 { return fnv64(fmt.Sprintf("%v", v)) },
		Detach:   func(v *T) {},
		Ext:      func() (Namespace, bool) { return nil, false },
	}
}

// fnv64 is the small non-cryptographic hash used as a fallback for payload
// types without a registered Hash function.
func fnv64(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
