// Package interp implements the Language's tree-walking evaluator: a
// Scope chain of Cells, statement execution with break/continue/return
// signaled as control-flow errors, and struct/function values built on
// top of pkg/cell's reference-counted, copy-on-write Any.
package interp

import (
	"fmt"

	"covlang/pkg/ast"
	"covlang/pkg/cell"
	"covlang/pkg/registry"
)

// Interpreter runs a parsed program against a Scope chain rooted at a
// built-in registry.
type Interpreter struct {
	global  *Scope
	structs map[string]*StructDef
}

// New builds an Interpreter with its global scope populated from reg's
// type descriptors and top-level bindings.
func New(reg *registry.Registry) *Interpreter {
	global := NewScope(nil)
	for name, v := range reg.Bindings() {
		global.Define(name, v)
	}
	for _, td := range reg.Types() {
		td := td
		global.Define(td.Name, cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
			return td.New(), nil
		}))
	}
	return &Interpreter{global: global, structs: make(map[string]*StructDef)}
}

// Global returns the interpreter's top-level scope, e.g. so a host can
// inject extra bindings (command-line args, host callbacks) before Run.
func (in *Interpreter) Global() *Scope { return in.global }

// Run hoists every top-level function and struct declaration, then
// executes the program's statements in order, returning the value of the
// last expression statement evaluated (or an empty Cell if none).
func (in *Interpreter) Run(prog *ast.Program) (*cell.Any, error) {
	if err := in.hoist(prog.Statements); err != nil {
		return nil, err
	}

	var last *cell.Any = &cell.Any{}
	for _, s := range prog.Statements {
		switch n := s.(type) {
		case *ast.FuncDecl, *ast.StructDecl:
			continue // already hoisted
		case *ast.ExprStmt:
			v, err := in.evalExpr(in.global, n.X)
			if err != nil {
				return nil, err
			}
			last = v
		default:
			if err := in.execStmt(in.global, s); err != nil {
				return nil, err
			}
		}
	}
	return last, nil
}

func (in *Interpreter) hoist(stmts []ast.Stmt) error {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.FuncDecl:
			in.global.Define(n.Name, cell.MakeConstant(Function{
				Name: n.Name, Params: n.Params, Body: n.Body, Closure: in.global,
			}))
		case *ast.StructDecl:
			def, err := in.buildStructDef(n)
			if err != nil {
				return err
			}
			in.structs[n.Name] = def
			in.global.Define(n.Name, cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
				return in.construct(def, args)
			}))
		}
	}
	return nil
}

func (in *Interpreter) buildStructDef(decl *ast.StructDecl) (*StructDef, error) {
	var parent *StructDef
	if decl.Extends != "" {
		p, ok := in.structs[decl.Extends]
		if !ok {
			return nil, fmt.Errorf("interp: line %d: struct %q extends unknown struct %q", decl.Line(), decl.Name, decl.Extends)
		}
		parent = p
	}
	methods := make(map[string]*ast.FuncDecl, len(decl.Methods))
	for _, m := range decl.Methods {
		methods[m.Name] = m
	}
	return &StructDef{Decl: decl, Methods: methods, Parent: parent}, nil
}

func (in *Interpreter) construct(def *StructDef, args []*cell.Any) (*cell.Any, error) {
	fields := make(map[string]*cell.Any)
	for s := def; s != nil; s = s.Parent {
		for _, f := range s.Decl.Fields {
			if _, ok := fields[f]; !ok {
				fields[f] = &cell.Any{}
			}
		}
	}
	for i, name := range def.Decl.Fields {
		if i < len(args) {
			fields[name] = args[i].Copy()
		}
	}
	instCell := cell.MakeSingle[*Instance](&Instance{StructName: def.Decl.Name, Fields: fields})
	if ctor, ok := def.Method(def.Decl.Name); ok {
		fn := Function{Name: ctor.Name, Params: ctor.Params, Body: ctor.Body, Closure: in.global}
		if _, err := in.callFunction(fn, args, instCell); err != nil {
			return nil, err
		}
	}
	return instCell, nil
}

// --- Statement execution ---

func (in *Interpreter) execBlock(scope *Scope, block *ast.Block) error {
	blockScope := NewScope(scope)
	for _, s := range block.Statements {
		if err := in.execStmt(blockScope, s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execStmt(scope *Scope, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VarDecl:
		var v *cell.Any = &cell.Any{}
		if n.Value != nil {
			val, err := in.evalExpr(scope, n.Value)
			if err != nil {
				return err
			}
			v = val
		}
		scope.Define(n.Name, v)
		return nil

	case *ast.ConstDecl:
		val, err := in.evalExpr(scope, n.Value)
		if err != nil {
			return err
		}
		if err := val.Constant(); err != nil {
			return err
		}
		scope.Define(n.Name, val)
		return nil

	case *ast.ExprStmt:
		_, err := in.evalExpr(scope, n.X)
		return err

	case *ast.Block:
		return in.execBlock(scope, n)

	case *ast.IfStmt:
		cond, err := in.evalExpr(scope, n.Cond)
		if err != nil {
			return err
		}
		if isTruthy(cond) {
			return in.execBlock(scope, n.Then)
		}
		if n.Else != nil {
			return in.execStmt(scope, n.Else)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := in.evalExpr(scope, n.Cond)
			if err != nil {
				return err
			}
			proceed := isTruthy(cond)
			if n.Negated {
				proceed = !proceed
			}
			if !proceed {
				return nil
			}
			if err := in.execBlock(scope, n.Body); err != nil {
				if _, ok := err.(breakSignal); ok {
					return nil
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return err
			}
		}

	case *ast.ForStmt:
		loopScope := NewScope(scope)
		if n.Init != nil {
			if err := in.execStmt(loopScope, n.Init); err != nil {
				return err
			}
		}
		for {
			if n.Cond != nil {
				cond, err := in.evalExpr(loopScope, n.Cond)
				if err != nil {
					return err
				}
				if !isTruthy(cond) {
					return nil
				}
			}
			if err := in.execBlock(loopScope, n.Body); err != nil {
				if _, ok := err.(breakSignal); ok {
					return nil
				}
				if _, ok := err.(continueSignal); !ok {
					return err
				}
			}
			if n.Post != nil {
				if err := in.execStmt(loopScope, n.Post); err != nil {
					return err
				}
			}
		}

	case *ast.ForeachStmt:
		iter, err := in.evalExpr(scope, n.Iter)
		if err != nil {
			return err
		}
		items, err := iterableItems(iter)
		if err != nil {
			return err
		}
		for _, item := range items {
			loopScope := NewScope(scope)
			loopScope.Define(n.VarName, item)
			if err := in.execBlock(loopScope, n.Body); err != nil {
				if _, ok := err.(breakSignal); ok {
					return nil
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return err
			}
		}
		return nil

	case *ast.BreakStmt:
		return breakSignal{}

	case *ast.ContinueStmt:
		return continueSignal{}

	case *ast.ReturnStmt:
		var v *cell.Any = &cell.Any{}
		if n.Value != nil {
			val, err := in.evalExpr(scope, n.Value)
			if err != nil {
				return err
			}
			v = val
		}
		return returnSignal{value: v}

	case *ast.FuncDecl:
		// Top-level declarations are hoisted by Run; a nested one is bound
		// in the scope it appears in.
		scope.Define(n.Name, cell.MakeConstant(Function{
			Name: n.Name, Params: n.Params, Body: n.Body, Closure: scope,
		}))
		return nil

	case *ast.StructDecl:
		def, err := in.buildStructDef(n)
		if err != nil {
			return err
		}
		in.structs[n.Name] = def
		scope.Define(n.Name, cell.NewNativeFn(func(args []*cell.Any) (*cell.Any, error) {
			return in.construct(def, args)
		}))
		return nil

	case *ast.TryStmt:
		return in.execTry(scope, n)

	case *ast.ThrowStmt:
		v, err := in.evalExpr(scope, n.Value)
		if err != nil {
			return err
		}
		return &ScriptException{Value: v}

	case *ast.ImportStmt, *ast.PackageStmt, *ast.UsingStmt:
		return nil // module wiring is a host concern; the interpreter only runs one unit

	case *ast.NamespaceStmt:
		return in.execBlock(scope, n.Body)
	}
	return fmt.Errorf("interp: unsupported statement %T", s)
}

func (in *Interpreter) execTry(scope *Scope, n *ast.TryStmt) error {
	err := in.execBlock(scope, n.Body)
	if err == nil {
		return nil
	}
	switch err.(type) {
	case breakSignal, continueSignal, returnSignal:
		return err
	}
	var excValue *cell.Any
	if se, ok := err.(*ScriptException); ok {
		excValue = se.Value
	} else {
		excValue = cell.Make(err.Error())
	}
	catchScope := NewScope(scope)
	catchScope.Define(n.CatchVar, excValue)
	return in.execBlock(catchScope, n.Catch)
}

func iterableItems(c *cell.Any) ([]*cell.Any, error) {
	if cell.IsType[registry.List](c) {
		v, err := cell.ConstVal[registry.List](c)
		if err != nil {
			return nil, err
		}
		return v.Items(), nil
	}
	if cell.IsType[registry.Array](c) {
		v, err := cell.ConstVal[registry.Array](c)
		if err != nil {
			return nil, err
		}
		return v.Items(), nil
	}
	if cell.IsType[string](c) {
		v, err := cell.ConstVal[string](c)
		if err != nil {
			return nil, err
		}
		items := make([]*cell.Any, 0, len(*v))
		for _, r := range *v {
			items = append(items, cell.Make(registry.Char(r)))
		}
		return items, nil
	}
	return nil, fmt.Errorf("interp: value of type %q is not iterable", c.GetTypeName())
}

func isTruthy(c *cell.Any) bool {
	if !c.Usable() {
		return false
	}
	if cell.IsType[registry.Boolean](c) {
		v, _ := cell.ConstVal[registry.Boolean](c)
		return bool(*v)
	}
	if cell.IsType[registry.Number](c) {
		v, _ := cell.ConstVal[registry.Number](c)
		return *v != 0
	}
	return true
}

// --- Function calls ---

func (in *Interpreter) callFunction(fn Function, args []*cell.Any, this *cell.Any) (*cell.Any, error) {
	scope := NewScope(fn.Closure)
	if this != nil {
		scope.Define("this", this)
	}
	for i, p := range fn.Params {
		var arg *cell.Any = &cell.Any{}
		if i < len(args) {
			arg = args[i]
		}
		bound := arg.Copy()
		if bound.Usable() {
			if err := bound.Clone(); err != nil {
				return nil, err
			}
		}
		scope.Define(p, bound)
	}
	err := in.execBlock(scope, fn.Body)
	if rs, ok := err.(returnSignal); ok {
		return rs.value, nil
	}
	if err != nil {
		return nil, err
	}
	return &cell.Any{}, nil
}

func (in *Interpreter) invoke(callee *cell.Any, args []*cell.Any) (*cell.Any, error) {
	if cell.IsType[cell.NativeFn](callee) {
		fn, err := cell.ConstVal[cell.NativeFn](callee)
		if err != nil {
			return nil, err
		}
		return (*fn)(args)
	}
	if cell.IsType[Function](callee) {
		fn, err := cell.ConstVal[Function](callee)
		if err != nil {
			return nil, err
		}
		return in.callFunction(*fn, args, nil)
	}
	return nil, fmt.Errorf("interp: value of type %q is not callable", callee.GetTypeName())
}
