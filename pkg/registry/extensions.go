package registry

import (
	"strings"

	"covlang/pkg/cell"
)

// Extension namespaces for the built-in types, installed via each type's
// Ops.Ext. Each member is a native function bound as a constant Cell, the
// way the built-in registry installs any top-level binding.

var charExt = cell.Namespace{
	"upper": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		c, err := requireArg[Char](args, 0)
		if err != nil {
			return nil, err
		}
		return cell.Make(Char(strings.ToUpper(string(rune(c)))[0])), nil
	}),
}

var stringExt = cell.Namespace{
	"length": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		s, err := requireArg[string](args, 0)
		if err != nil {
			return nil, err
		}
		return cell.Make(Number(len(s))), nil
	}),
	"upper": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		s, err := requireArg[string](args, 0)
		if err != nil {
			return nil, err
		}
		return cell.Make(strings.ToUpper(s)), nil
	}),
	"split": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		s, err := requireArg[string](args, 0)
		if err != nil {
			return nil, err
		}
		sep, err := requireArg[string](args, 1)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		items := make([]*cell.Any, len(parts))
		for i, p := range parts {
			items[i] = cell.Make(p)
		}
		return cell.Make(*NewList(items...)), nil
	}),
}

var listExt = cell.Namespace{
	"push": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		if len(args) < 2 {
			return nil, cell.ErrEmptyAccess()
		}
		lv, err := cell.Val[List](args[0], false)
		if err != nil {
			return nil, err
		}
		lv.Push(args[1].Copy())
		return args[0], nil
	}),
	"size": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		l, err := requireArg[List](args, 0)
		if err != nil {
			return nil, err
		}
		return cell.Make(Number(len(l.items))), nil
	}),
}

var arrayExt = cell.Namespace{
	"size": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		a, err := requireArg[Array](args, 0)
		if err != nil {
			return nil, err
		}
		return cell.Make(Number(len(a.items))), nil
	}),
}

var pairExt = cell.Namespace{
	"first": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		p, err := requireArg[Pair](args, 0)
		if err != nil {
			return nil, err
		}
		return p.First, nil
	}),
	"second": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		p, err := requireArg[Pair](args, 0)
		if err != nil {
			return nil, err
		}
		return p.Second, nil
	}),
}

var hashMapExt = cell.Namespace{
	"size": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		m, err := requireArg[HashMap](args, 0)
		if err != nil {
			return nil, err
		}
		return cell.Make(Number(m.Len())), nil
	}),
	"get": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		if len(args) < 2 {
			return nil, cell.ErrEmptyAccess()
		}
		m, err := requireArg[HashMap](args, 0)
		if err != nil {
			return nil, err
		}
		v, ok := m.Get(args[1])
		if !ok {
			return &cell.Any{}, nil
		}
		return v, nil
	}),
	"set": cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		if len(args) < 3 {
			return nil, cell.ErrEmptyAccess()
		}
		mv, err := cell.Val[HashMap](args[0], false)
		if err != nil {
			return nil, err
		}
		mv.Set(args[1].Copy(), args[2].Copy())
		return args[0], nil
	}),
}

func requireArg[T any](args []*cell.Any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, cell.ErrEmptyAccess()
	}
	v, err := cell.ConstVal[T](args[i])
	if err != nil {
		return zero, err
	}
	return *v, nil
}
