package interp

import "covlang/pkg/cell"

// Scope is one link in the lexical environment chain: a map of names to
// Cells plus a pointer to the enclosing scope. Block statements open a
// fresh Scope chained to the one active when they were reached; function
// calls and struct methods open one chained to the function's closure.
type Scope struct {
	vars   map[string]*cell.Any
	parent *Scope
}

// NewScope opens a child scope of parent. parent may be nil for the
// top-level (global) scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]*cell.Any), parent: parent}
}

// Define binds name to v in this scope, shadowing any outer binding of
// the same name.
func (s *Scope) Define(name string, v *cell.Any) {
	s.vars[name] = v
}

// Lookup walks the scope chain outward and returns the first binding
// found for name.
func (s *Scope) Lookup(name string) (*cell.Any, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign walks the scope chain outward and replaces the cell bound to
// name, returning false if name is not yet bound anywhere.
func (s *Scope) Assign(name string, v *cell.Any) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.vars[name]; ok {
			sc.vars[name] = v
			return true
		}
	}
	return false
}
