package interp

import (
	"fmt"

	"covlang/pkg/ast"
	"covlang/pkg/cell"
)

// Function is the runtime payload of a user-defined function: its
// declaration plus the scope it closed over at definition time.
type Function struct {
	Name    string
	Params  []string
	Body    *ast.Block
	Closure *Scope
}

// Instance is the runtime payload of a struct value: its type name plus
// the field Cells that make up its storage. Methods are resolved through
// the owning Interpreter's struct table, not stored per-instance.
type Instance struct {
	StructName string
	Fields     map[string]*cell.Any
}

// StructDef is a compiled struct declaration: its own methods plus a
// pointer to the parent definition, if any, for `extends` lookups.
type StructDef struct {
	Decl    *ast.StructDecl
	Methods map[string]*ast.FuncDecl
	Parent  *StructDef
}

// Method resolves name against this struct's own methods, falling back
// to the parent chain the way `extends` composes behavior.
func (d *StructDef) Method(name string) (*ast.FuncDecl, bool) {
	for s := d; s != nil; s = s.Parent {
		if m, ok := s.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (d *StructDef) hasField(name string) bool {
	for s := d; s != nil; s = s.Parent {
		for _, f := range s.Decl.Fields {
			if f == name {
				return true
			}
		}
	}
	return false
}

func hashPointer(p any) uint64 {
	s := fmt.Sprintf("%p", p)
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func init() {
	cell.RegisterOps(&cell.Ops[Function]{
		TypeName: "function",
		Equal:    func(a, b Function) bool { return a.Body == b.Body && a.Closure == b.Closure },
		Integer:  func(v Function) int64 { return int64(len(v.Params)) },
		String:   func(v Function) string { return fmt.Sprintf("#<function %s>", v.Name) },
		Hash:     func(v Function) uint64 { return hashPointer(v.Body) },
		Detach:   func(v *Function) {},
		Ext:      func() (cell.Namespace, bool) { return nil, false },
	})

	cell.RegisterOps(&cell.Ops[cell.NativeFn]{
		TypeName: "native_function",
		Equal:    func(a, b cell.NativeFn) bool { return false },
		Integer:  func(v cell.NativeFn) int64 { return 0 },
		String:   func(v cell.NativeFn) string { return "#<native function>" },
		Hash:     func(v cell.NativeFn) uint64 { return 0 },
		Detach:   func(v *cell.NativeFn) {},
		Ext:      func() (cell.Namespace, bool) { return nil, false },
	})

	cell.RegisterOps(&cell.Ops[*Instance]{
		TypeName: "instance",
		Equal:    func(a, b *Instance) bool { return a == b },
		Integer:  func(v *Instance) int64 { return int64(len(v.Fields)) },
		String:   func(v *Instance) string { return fmt.Sprintf("#<%s instance>", v.StructName) },
		Hash:     func(v *Instance) uint64 { return hashPointer(v) },
		Detach: func(v **Instance) {
			for _, f := range (*v).Fields {
				f.Detach()
			}
		},
		Ext: func() (cell.Namespace, bool) { return nil, false },
	})
}
