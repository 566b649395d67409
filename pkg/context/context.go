// Package context aggregates the pieces a running program needs: the
// statement compiler, a tree-walking interpreter, and the built-in
// registry the interpreter's global scope is seeded from. It mirrors the
// original runtime's create_context/create_subcontext pair: a Context
// owns a fresh Compiler and Interpreter, while a Subcontext shares its
// parent's Compiler and command-line arguments but gets its own
// Interpreter and scope.
package context

import (
	"fmt"
	"os"
	"path/filepath"

	"covlang/pkg/ast"
	"covlang/pkg/cell"
	"covlang/pkg/compiler"
	"covlang/pkg/interp"
	"covlang/pkg/registry"
)

const sdkPathEnvVar = "LANG_SDK_PATH"

// Context is one independent execution of the Language: a compiler, an
// interpreter, and the argument vector bound under the `system` namespace.
type Context struct {
	Compiler *compiler.Compiler
	Interp   *interp.Interpreter
	Args     []string
	SDKPath  string
}

// ContextHandle is the payload bound under the top-level name `context`: a
// Cell wrapping the owning Context itself, so a script can recover the
// context it is running in (e.g. to open a subcontext for `import`). It is
// installed at `single` protection — like `this` inside a method, it must
// never be rebound or aliased into a plain mutable Cell.
type ContextHandle struct {
	C *Context
}

func init() {
	cell.RegisterOps(&cell.Ops[ContextHandle]{
		TypeName: "context",
		Equal:    func(a, b ContextHandle) bool { return a.C == b.C },
		Integer:  func(v ContextHandle) int64 { return int64(len(v.C.Args)) },
		String:   func(v ContextHandle) string { return "#<context>" },
		Hash:     func(v ContextHandle) uint64 { return hashPointer(v.C) },
		Detach:   func(v *ContextHandle) {},
		Ext:      func() (cell.Namespace, bool) { return nil, false },
	})
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

// New builds a root Context with a fresh Compiler, Interpreter, and
// built-in registry, then binds `context` in its own global scope.
func New(args []string) *Context {
	c := &Context{
		Compiler: compiler.New(),
		Interp:   interp.New(registry.NewPopulated(args)),
		Args:     args,
		SDKPath:  ResolveSDKPath(),
	}
	c.bindSelf()
	return c
}

// NewSubcontext builds a Context that shares this Context's Compiler and
// argument vector, but gets its own Interpreter (and therefore its own
// global scope) — the way a nested script evaluation (e.g. a sandboxed
// `eval`) should not see or clobber the parent's bindings.
func (c *Context) NewSubcontext() *Context {
	sub := &Context{
		Compiler: c.Compiler,
		Interp:   interp.New(registry.NewPopulated(c.Args)),
		Args:     c.Args,
		SDKPath:  c.SDKPath,
	}
	sub.bindSelf()
	return sub
}

// bindSelf installs `context` in the interpreter's global scope, pointing
// back at this Context — the name §6 requires be present at the top level
// alongside the built-in types and namespaces.
func (c *Context) bindSelf() {
	c.Interp.Global().Define("context", cell.MakeSingle(ContextHandle{C: c}))
}

// Eval compiles and runs source in this Context, returning the value of
// its last top-level expression.
func (c *Context) Eval(source string) (*cell.Any, error) {
	prog, err := c.Compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	return c.Interp.Run(prog)
}

// EvalProgram runs an already-compiled program, skipping Compile.
func (c *Context) EvalProgram(prog *ast.Program) (*cell.Any, error) {
	return c.Interp.Run(prog)
}

// ResolveSDKPath returns the runtime/library search path: the
// LANG_SDK_PATH environment variable if set, else a platform default
// next to the host executable.
func ResolveSDKPath() string {
	if p := os.Getenv(sdkPathEnvVar); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "sdk")
}
