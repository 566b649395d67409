// Package compiler turns source text into a validated ast.Program. It
// delegates tokenizing and tree construction to pkg/lexer and pkg/parser,
// then walks the tree enforcing the structural rules a grammar table alone
// can't express — break/continue only inside a loop, catch bodies that
// bind their exception name, and so on.
package compiler

import (
	"fmt"

	"covlang/pkg/ast"
	"covlang/pkg/parser"
)

// GrammarRule documents one statement production the parser recognizes,
// named after the leading keyword it dispatches on. The table is purely
// descriptive: pkg/parser does the actual recursive-descent dispatch, and
// Compile does not consult the table.
type GrammarRule struct {
	Keyword     string
	Description string
}

var grammarTable = []GrammarRule{
	{"import", "import a module by path"},
	{"package", "declare the current package"},
	{"using", "bring a namespace into scope"},
	{"namespace", "open a named block of declarations"},
	{"var", "declare a mutable binding"},
	{"const", "declare a constant binding"},
	{"if", "conditional with optional else/else-if chain"},
	{"while", "pre-tested loop"},
	{"until", "pre-tested loop, negated condition"},
	{"for", "C-style counted loop"},
	{"foreach", "iterate a container's elements"},
	{"break", "exit the innermost loop"},
	{"continue", "skip to the innermost loop's next iteration"},
	{"function", "declare a named function, optionally overriding a parent method"},
	{"return", "exit the current function, optionally with a value"},
	{"struct", "declare a structured type, optionally extending a parent"},
	{"try", "run a block, routing exceptions to a catch clause"},
	{"throw", "raise an exception value"},
}

// Compiler compiles Language source into a validated syntax tree.
type Compiler struct {
	rules []GrammarRule
}

// New builds a Compiler with the full built-in grammar table.
func New() *Compiler {
	return &Compiler{rules: grammarTable}
}

// Rules returns the grammar table the compiler was built with.
func (c *Compiler) Rules() []GrammarRule { return append([]GrammarRule{}, c.rules...) }

// Compile parses source and validates the resulting tree's control-flow
// structure.
func (c *Compiler) Compile(source string) (*ast.Program, error) {
	prog, err := parser.ParseProgramString(source)
	if err != nil {
		return nil, err
	}
	v := &validator{}
	if err := v.walkStatements(prog.Statements); err != nil {
		return nil, err
	}
	return prog, nil
}

type validator struct {
	loopDepth int
	funcDepth int
}

func (v *validator) walkStatements(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := v.walkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) walkStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.BreakStmt:
		if v.loopDepth == 0 {
			return fmt.Errorf("compiler: line %d: break outside of a loop", n.Line())
		}
	case *ast.ContinueStmt:
		if v.loopDepth == 0 {
			return fmt.Errorf("compiler: line %d: continue outside of a loop", n.Line())
		}
	case *ast.ReturnStmt:
		if v.funcDepth == 0 {
			return fmt.Errorf("compiler: line %d: return outside of a function", n.Line())
		}
	case *ast.Block:
		return v.walkStatements(n.Statements)
	case *ast.IfStmt:
		if err := v.walkStatements(n.Then.Statements); err != nil {
			return err
		}
		if n.Else != nil {
			return v.walkStmt(n.Else)
		}
	case *ast.WhileStmt:
		v.loopDepth++
		err := v.walkStatements(n.Body.Statements)
		v.loopDepth--
		return err
	case *ast.ForStmt:
		v.loopDepth++
		err := v.walkStatements(n.Body.Statements)
		v.loopDepth--
		return err
	case *ast.ForeachStmt:
		v.loopDepth++
		err := v.walkStatements(n.Body.Statements)
		v.loopDepth--
		return err
	case *ast.FuncDecl:
		v.funcDepth++
		err := v.walkStatements(n.Body.Statements)
		v.funcDepth--
		return err
	case *ast.StructDecl:
		for _, m := range n.Methods {
			if err := v.walkStmt(m); err != nil {
				return err
			}
		}
	case *ast.TryStmt:
		if err := v.walkStatements(n.Body.Statements); err != nil {
			return err
		}
		if n.CatchVar == "" {
			return fmt.Errorf("compiler: line %d: catch clause must bind an exception name", n.Line())
		}
		return v.walkStatements(n.Catch.Statements)
	case *ast.NamespaceStmt:
		return v.walkStatements(n.Body.Statements)
	}
	return nil
}
