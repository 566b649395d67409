package registry

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"covlang/pkg/cell"
	"covlang/pkg/pool"
)

// TypeDescriptor names one built-in type, its default-constructor thunk,
// and its (optional) extension namespace. The runtime type token in the
// original design is, in this port, simply the descriptor's position in
// the registry plus the Go static type the thunk produces — there is no
// separate type-index value, since reflect.Type already serves that role
// inside pkg/cell.
type TypeDescriptor struct {
	Name       string
	New        func() *cell.Any
	Extensions cell.Namespace
}

// Registry is the ordered collection of type descriptors plus the set of
// top-level named bindings a fresh interpreter scope is populated from —
// exactly the "Built-in registry" of the execution context.
type Registry struct {
	types    []TypeDescriptor
	bindings map[string]*cell.Any
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{bindings: make(map[string]*cell.Any)}
}

// AddBuiltinType registers a type descriptor and returns the Registry for
// chaining, mirroring the teacher's builder-style construction.
func (r *Registry) AddBuiltinType(d TypeDescriptor) *Registry {
	r.types = append(r.types, d)
	return r
}

// AddBuiltinVar installs a top-level name bound to a Cell.
func (r *Registry) AddBuiltinVar(name string, v *cell.Any) *Registry {
	r.bindings[name] = v
	return r
}

// Types returns the ordered type descriptors.
func (r *Registry) Types() []TypeDescriptor { return append([]TypeDescriptor{}, r.types...) }

// Bindings returns the top-level name -> Cell map. Callers must not mutate
// the returned map directly; use AddBuiltinVar.
func (r *Registry) Bindings() map[string]*cell.Any { return r.bindings }

// Lookup returns the type descriptor registered under name, if any.
func (r *Registry) Lookup(name string) (TypeDescriptor, bool) {
	for _, d := range r.types {
		if d.Name == name {
			return d, true
		}
	}
	return TypeDescriptor{}, false
}

// NewPopulated builds a Registry with the primitive types, the five
// built-in namespaces, and the free functions (to_integer, to_string,
// type, clone, move, swap) named in the external interface. args is the
// constant command-line argument array bound under the `system` namespace.
func NewPopulated(args []string) *Registry {
	registerPrimitiveOps()

	r := New()
	r.AddBuiltinType(TypeDescriptor{Name: "char", New: func() *cell.Any { return cell.Make[Char](0) }, Extensions: charExt}).
		AddBuiltinType(TypeDescriptor{Name: "number", New: func() *cell.Any { return cell.Make[Number](0) }}).
		AddBuiltinType(TypeDescriptor{Name: "boolean", New: func() *cell.Any { return cell.Make[Boolean](true) }}).
		AddBuiltinType(TypeDescriptor{Name: "pointer", New: func() *cell.Any { return cell.Make(NullPointer) }}).
		AddBuiltinType(TypeDescriptor{Name: "string", New: func() *cell.Any { return cell.Make("") }, Extensions: stringExt}).
		AddBuiltinType(TypeDescriptor{Name: "list", New: func() *cell.Any { return cell.Make(List{}) }, Extensions: listExt}).
		AddBuiltinType(TypeDescriptor{Name: "array", New: func() *cell.Any { return cell.Make(Array{}) }, Extensions: arrayExt}).
		AddBuiltinType(TypeDescriptor{Name: "pair", New: func() *cell.Any {
			return cell.Make(Pair{First: cell.Make(Number(0)), Second: cell.Make(Number(0))})
		}, Extensions: pairExt}).
		AddBuiltinType(TypeDescriptor{Name: "hash_map", New: func() *cell.Any { return cell.Make(*NewHashMap()) }, Extensions: hashMapExt})

	argItems := make([]*cell.Any, len(args))
	for i, a := range args {
		argItems[i] = cell.MakeConstant(a)
	}
	cmdArgs := cell.MakeConstant(Array{items: argItems})

	r.AddBuiltinVar("to_integer", cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
		if len(a) == 0 {
			return nil, cell.ErrEmptyAccess()
		}
		return cell.Make(Number(a[0].ToInteger())), nil
	}))
	r.AddBuiltinVar("to_string", cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
		if len(a) == 0 {
			return nil, cell.ErrEmptyAccess()
		}
		return cell.Make(a[0].ToString()), nil
	}))
	r.AddBuiltinVar("type", cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
		if len(a) == 0 {
			return nil, cell.ErrEmptyAccess()
		}
		return cell.Make(a[0].GetTypeName()), nil
	}))
	r.AddBuiltinVar("clone", cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
		if len(a) == 0 {
			return nil, cell.ErrEmptyAccess()
		}
		c := a[0].Copy()
		if err := c.Clone(); err != nil {
			return nil, err
		}
		return c, nil
	}))
	r.AddBuiltinVar("move", cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
		if len(a) == 0 {
			return nil, cell.ErrEmptyAccess()
		}
		a[0].TryMove()
		return a[0], nil
	}))
	r.AddBuiltinVar("swap", cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
		if len(a) < 2 {
			return nil, cell.ErrEmptyAccess()
		}
		if err := a[0].Swap(a[1], true); err != nil {
			return nil, err
		}
		return &cell.Any{}, nil
	}))

	r.AddBuiltinVar("math", cell.MakeConstant(mathNamespace()))
	r.AddBuiltinVar("iostream", cell.MakeConstant(iostreamNamespace()))
	r.AddBuiltinVar("system", cell.MakeConstant(systemNamespace(cmdArgs)))
	r.AddBuiltinVar("runtime", cell.MakeConstant(runtimeNamespace()))
	r.AddBuiltinVar("exception", cell.MakeConstant(exceptionNamespace()))

	return r
}

func mathNamespace() cell.Namespace {
	unary := func(fn func(float64) float64) cell.NativeFn {
		return func(a []*cell.Any) (*cell.Any, error) {
			v, err := requireArg[Number](a, 0)
			if err != nil {
				return nil, err
			}
			return cell.Make(Number(fn(float64(v)))), nil
		}
	}
	return cell.Namespace{
		"abs":   cell.NewNativeFn(unary(math.Abs)),
		"sqrt":  cell.NewNativeFn(unary(math.Sqrt)),
		"floor": cell.NewNativeFn(unary(math.Floor)),
		"ceil":  cell.NewNativeFn(unary(math.Ceil)),
		"pow": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			base, err := requireArg[Number](a, 0)
			if err != nil {
				return nil, err
			}
			exp, err := requireArg[Number](a, 1)
			if err != nil {
				return nil, err
			}
			return cell.Make(Number(math.Pow(float64(base), float64(exp)))), nil
		}),
	}
}

func iostreamNamespace() cell.Namespace {
	reader := bufio.NewReader(os.Stdin)
	return cell.Namespace{
		"print": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			for _, c := range a {
				fmt.Print(c.ToString())
			}
			return &cell.Any{}, nil
		}),
		"println": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			for _, c := range a {
				fmt.Print(c.ToString())
			}
			fmt.Println()
			return &cell.Any{}, nil
		}),
		"input": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return nil, err
			}
			return cell.Make(trimNewline(line)), nil
		}),
	}
}

func systemNamespace(cmdArgs *cell.Any) cell.Namespace {
	return cell.Namespace{
		"args": cmdArgs,
		"getenv": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			name, err := requireArg[string](a, 0)
			if err != nil {
				return nil, err
			}
			return cell.Make(os.Getenv(name)), nil
		}),
		"exit": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			code := 0
			if len(a) > 0 {
				code = int(a[0].ToInteger())
			}
			os.Exit(code)
			return &cell.Any{}, nil
		}),
	}
}

func runtimeNamespace() cell.Namespace {
	return cell.Namespace{
		"version": cell.MakeConstant("0.1"),
		"gc_stats": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			// Reads a freshly created pool, so the result is always 0; the
			// proxy and holder pools inside pkg/cell are not reported.
			s := pool.New[int]().Stats()
			return cell.Make(Number(s.Allocs)), nil
		}),
	}
}

func exceptionNamespace() cell.Namespace {
	return cell.Namespace{
		"message": cell.NewNativeFn(func(a []*cell.Any) (*cell.Any, error) {
			v, err := requireArg[string](a, 0)
			if err != nil {
				return nil, err
			}
			return cell.Make(v), nil
		}),
	}
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	n = len(s)
	if n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
