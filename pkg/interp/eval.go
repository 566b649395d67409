package interp

import (
	"fmt"
	"strconv"

	"covlang/pkg/ast"
	"covlang/pkg/cell"
	"covlang/pkg/registry"
)

func (in *Interpreter) evalExpr(scope *Scope, e ast.Expr) (*cell.Any, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return in.evalLiteral(n)
	case *ast.Ident:
		v, ok := scope.Lookup(n.Name)
		if !ok {
			return nil, fmt.Errorf("interp: line %d: undefined name %q", n.Line(), n.Name)
		}
		return v, nil
	case *ast.ThisExpr:
		v, ok := scope.Lookup("this")
		if !ok {
			return nil, fmt.Errorf("interp: line %d: 'this' used outside of a method", n.Line())
		}
		return v, nil
	case *ast.UnaryExpr:
		return in.evalUnary(scope, n)
	case *ast.BinaryExpr:
		return in.evalBinary(scope, n)
	case *ast.AssignExpr:
		return in.evalAssign(scope, n)
	case *ast.Call:
		return in.evalCall(scope, n)
	case *ast.MemberAccess:
		return in.evalMember(scope, n)
	case *ast.IndexExpr:
		return in.evalIndex(scope, n)
	}
	return nil, fmt.Errorf("interp: unsupported expression %T", e)
}

func (in *Interpreter) evalLiteral(n *ast.Literal) (*cell.Any, error) {
	switch n.Kind {
	case ast.LitNumber:
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, fmt.Errorf("interp: line %d: invalid number literal %q", n.Line(), n.Text)
		}
		return cell.Make(registry.Number(f)), nil
	case ast.LitString:
		return cell.Make(n.Text), nil
	case ast.LitChar:
		if len(n.Text) == 0 {
			return nil, fmt.Errorf("interp: line %d: empty character literal", n.Line())
		}
		return cell.Make(registry.Char([]rune(n.Text)[0])), nil
	case ast.LitBool:
		return cell.Make(registry.Boolean(n.Bool)), nil
	case ast.LitNull:
		return &cell.Any{}, nil
	}
	return nil, fmt.Errorf("interp: line %d: unknown literal kind", n.Line())
}

func (in *Interpreter) evalUnary(scope *Scope, n *ast.UnaryExpr) (*cell.Any, error) {
	x, err := in.evalExpr(scope, n.X)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		v, err := cell.ConstVal[registry.Number](x)
		if err != nil {
			return nil, err
		}
		return cell.Make(-*v), nil
	case "!":
		return cell.Make(registry.Boolean(!isTruthy(x))), nil
	}
	return nil, fmt.Errorf("interp: line %d: unknown unary operator %q", n.Line(), n.Op)
}

func (in *Interpreter) evalBinary(scope *Scope, n *ast.BinaryExpr) (*cell.Any, error) {
	if n.Op == "&&" || n.Op == "||" {
		left, err := in.evalExpr(scope, n.Left)
		if err != nil {
			return nil, err
		}
		lt := isTruthy(left)
		if n.Op == "&&" && !lt {
			return cell.Make(registry.Boolean(false)), nil
		}
		if n.Op == "||" && lt {
			return cell.Make(registry.Boolean(true)), nil
		}
		right, err := in.evalExpr(scope, n.Right)
		if err != nil {
			return nil, err
		}
		return cell.Make(registry.Boolean(isTruthy(right))), nil
	}

	left, err := in.evalExpr(scope, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(scope, n.Right)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(n.Line(), n.Op, left, right)
}

func applyBinaryOp(line int, op string, left, right *cell.Any) (*cell.Any, error) {
	switch op {
	case "==":
		return cell.Make(registry.Boolean(left.Compare(right))), nil
	case "!=":
		return cell.Make(registry.Boolean(!left.Compare(right))), nil
	}

	if op == "+" && cell.IsType[string](left) && cell.IsType[string](right) {
		lv, _ := cell.ConstVal[string](left)
		rv, _ := cell.ConstVal[string](right)
		return cell.Make(*lv + *rv), nil
	}

	lv, err := cell.ConstVal[registry.Number](left)
	if err != nil {
		return nil, fmt.Errorf("interp: line %d: left operand of %q is not a number: %w", line, op, err)
	}
	rv, err := cell.ConstVal[registry.Number](right)
	if err != nil {
		return nil, fmt.Errorf("interp: line %d: right operand of %q is not a number: %w", line, op, err)
	}

	switch op {
	case "+":
		return cell.Make(*lv + *rv), nil
	case "-":
		return cell.Make(*lv - *rv), nil
	case "*":
		return cell.Make(*lv * *rv), nil
	case "/":
		if *rv == 0 {
			return nil, fmt.Errorf("interp: line %d: division by zero", line)
		}
		return cell.Make(*lv / *rv), nil
	case "%":
		if *rv == 0 {
			return nil, fmt.Errorf("interp: line %d: division by zero", line)
		}
		li, ri := int64(*lv), int64(*rv)
		return cell.Make(registry.Number(li % ri)), nil
	case "<":
		return cell.Make(registry.Boolean(*lv < *rv)), nil
	case ">":
		return cell.Make(registry.Boolean(*lv > *rv)), nil
	case "<=":
		return cell.Make(registry.Boolean(*lv <= *rv)), nil
	case ">=":
		return cell.Make(registry.Boolean(*lv >= *rv)), nil
	}
	return nil, fmt.Errorf("interp: line %d: unknown binary operator %q", line, op)
}

func (in *Interpreter) evalAssign(scope *Scope, n *ast.AssignExpr) (*cell.Any, error) {
	value, err := in.evalExpr(scope, n.Value)
	if err != nil {
		return nil, err
	}
	if n.Op != "=" {
		current, err := in.evalExpr(scope, n.Target)
		if err != nil {
			return nil, err
		}
		baseOp := n.Op[:len(n.Op)-1]
		value, err = applyBinaryOp(n.Line(), baseOp, current, value)
		if err != nil {
			return nil, err
		}
	}

	switch t := n.Target.(type) {
	case *ast.Ident:
		current, ok := scope.Lookup(t.Name)
		if !ok {
			return nil, fmt.Errorf("interp: line %d: assignment to undefined name %q", n.Line(), t.Name)
		}
		if current.IsConstant() {
			return nil, fmt.Errorf("interp: line %d: cannot assign to constant %q", n.Line(), t.Name)
		}
		scope.Assign(t.Name, value)
		return value, nil
	case *ast.MemberAccess:
		xCell, err := in.evalExpr(scope, t.X)
		if err != nil {
			return nil, err
		}
		if !cell.IsType[*Instance](xCell) {
			return nil, fmt.Errorf("interp: line %d: cannot assign field %q on non-struct value", n.Line(), t.Name)
		}
		inst, err := cell.ConstVal[*Instance](xCell)
		if err != nil {
			return nil, err
		}
		if def, ok := in.structs[(*inst).StructName]; ok && !def.hasField(t.Name) {
			return nil, fmt.Errorf("interp: line %d: %q has no field %q", n.Line(), (*inst).StructName, t.Name)
		}
		(*inst).Fields[t.Name] = value
		return value, nil
	case *ast.IndexExpr:
		return value, in.assignIndex(scope, t, value)
	}
	return nil, fmt.Errorf("interp: line %d: invalid assignment target", n.Line())
}

func (in *Interpreter) assignIndex(scope *Scope, t *ast.IndexExpr, value *cell.Any) error {
	xCell, err := in.evalExpr(scope, t.X)
	if err != nil {
		return err
	}
	idxCell, err := in.evalExpr(scope, t.Index)
	if err != nil {
		return err
	}

	switch {
	case cell.IsType[registry.List](xCell):
		lv, err := cell.Val[registry.List](xCell, false)
		if err != nil {
			return err
		}
		idx := int(idxCell.ToInteger())
		items := lv.Items()
		if idx < 0 || idx >= len(items) {
			return fmt.Errorf("interp: line %d: list index %d out of range", t.Line(), idx)
		}
		items[idx] = value
		return nil
	case cell.IsType[registry.Array](xCell):
		av, err := cell.Val[registry.Array](xCell, false)
		if err != nil {
			return err
		}
		idx := int(idxCell.ToInteger())
		items := av.Items()
		if idx < 0 || idx >= len(items) {
			return fmt.Errorf("interp: line %d: array index %d out of range", t.Line(), idx)
		}
		items[idx] = value
		return nil
	case cell.IsType[registry.HashMap](xCell):
		mv, err := cell.Val[registry.HashMap](xCell, false)
		if err != nil {
			return err
		}
		mv.Set(idxCell.Copy(), value)
		return nil
	}
	return fmt.Errorf("interp: line %d: value of type %q does not support indexed assignment", t.Line(), xCell.GetTypeName())
}

func (in *Interpreter) evalIndex(scope *Scope, n *ast.IndexExpr) (*cell.Any, error) {
	xCell, err := in.evalExpr(scope, n.X)
	if err != nil {
		return nil, err
	}
	idxCell, err := in.evalExpr(scope, n.Index)
	if err != nil {
		return nil, err
	}

	switch {
	case cell.IsType[registry.List](xCell):
		lv, err := cell.ConstVal[registry.List](xCell)
		if err != nil {
			return nil, err
		}
		idx := int(idxCell.ToInteger())
		items := lv.Items()
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("interp: line %d: list index %d out of range", n.Line(), idx)
		}
		return items[idx], nil
	case cell.IsType[registry.Array](xCell):
		av, err := cell.ConstVal[registry.Array](xCell)
		if err != nil {
			return nil, err
		}
		idx := int(idxCell.ToInteger())
		items := av.Items()
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("interp: line %d: array index %d out of range", n.Line(), idx)
		}
		return items[idx], nil
	case cell.IsType[registry.HashMap](xCell):
		mv, err := cell.ConstVal[registry.HashMap](xCell)
		if err != nil {
			return nil, err
		}
		v, ok := mv.Get(idxCell)
		if !ok {
			return &cell.Any{}, nil
		}
		return v, nil
	case cell.IsType[string](xCell):
		sv, err := cell.ConstVal[string](xCell)
		if err != nil {
			return nil, err
		}
		runes := []rune(*sv)
		idx := int(idxCell.ToInteger())
		if idx < 0 || idx >= len(runes) {
			return nil, fmt.Errorf("interp: line %d: string index %d out of range", n.Line(), idx)
		}
		return cell.Make(registry.Char(runes[idx])), nil
	}
	return nil, fmt.Errorf("interp: line %d: value of type %q is not indexable", n.Line(), xCell.GetTypeName())
}

func (in *Interpreter) evalMember(scope *Scope, n *ast.MemberAccess) (*cell.Any, error) {
	xCell, err := in.evalExpr(scope, n.X)
	if err != nil {
		return nil, err
	}
	return in.memberValue(n.Line(), xCell, n.Name)
}

func (in *Interpreter) memberValue(line int, xCell *cell.Any, name string) (*cell.Any, error) {
	if cell.IsType[*Instance](xCell) {
		inst, err := cell.ConstVal[*Instance](xCell)
		if err != nil {
			return nil, err
		}
		if v, ok := (*inst).Fields[name]; ok {
			return v, nil
		}
		def, ok := in.structs[(*inst).StructName]
		if ok {
			if m, ok := def.Method(name); ok {
				fn := Function{Name: m.Name, Params: m.Params, Body: m.Body, Closure: in.global}
				receiver := xCell
				return cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
					return in.callFunction(fn, args, receiver)
				}), nil
			}
		}
		return nil, fmt.Errorf("interp: line %d: %q has no member %q", line, (*inst).StructName, name)
	}

	if cell.IsType[cell.Namespace](xCell) {
		ns, err := cell.ConstVal[cell.Namespace](xCell)
		if err != nil {
			return nil, err
		}
		v, ok := (*ns)[name]
		if !ok {
			return nil, fmt.Errorf("interp: line %d: namespace has no member %q", line, name)
		}
		return v, nil
	}

	ext, err := xCell.GetExt()
	if err != nil {
		return nil, fmt.Errorf("interp: line %d: value of type %q has no member %q", line, xCell.GetTypeName(), name)
	}
	fn, ok := ext[name]
	if !ok {
		return nil, fmt.Errorf("interp: line %d: value of type %q has no member %q", line, xCell.GetTypeName(), name)
	}
	receiver := xCell
	boundFn, err := cell.ConstVal[cell.NativeFn](fn)
	if err != nil {
		return nil, err
	}
	return cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
		return (*boundFn)(append([]*cell.Any{receiver}, args...))
	}), nil
}

func (in *Interpreter) evalCall(scope *Scope, n *ast.Call) (*cell.Any, error) {
	args := make([]*cell.Any, len(n.Args))
	for i, a := range n.Args {
		v, err := in.evalExpr(scope, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if ma, ok := n.Callee.(*ast.MemberAccess); ok {
		xCell, err := in.evalExpr(scope, ma.X)
		if err != nil {
			return nil, err
		}
		callee, err := in.memberValue(n.Line(), xCell, ma.Name)
		if err != nil {
			return nil, err
		}
		return in.invoke(callee, args)
	}

	callee, err := in.evalExpr(scope, n.Callee)
	if err != nil {
		return nil, err
	}
	return in.invoke(callee, args)
}
