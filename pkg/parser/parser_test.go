package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"covlang/pkg/ast"
)

func TestParseVarAndIf(t *testing.T) {
	prog, err := ParseProgramString(`
		var x = 1;
		if (x == 1) {
			x = 2;
		} else {
			x = 3;
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	decl, ok := prog.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name)

	ifStmt, ok := prog.Statements[1].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
}

func TestParseFunctionDecl(t *testing.T) {
	prog, err := ParseProgramString(`
		function add(a, b) {
			return a + b;
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	fn, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body.Statements, 1)
}

func TestParseForeachAndCall(t *testing.T) {
	prog, err := ParseProgramString(`
		foreach (item in items) {
			print(item);
		}
	`)
	require.NoError(t, err)
	fe, ok := prog.Statements[0].(*ast.ForeachStmt)
	require.True(t, ok)
	require.Equal(t, "item", fe.VarName)
}

func TestParseStructDecl(t *testing.T) {
	prog, err := ParseProgramString(`
		struct Point {
			x;
			y;
			function length() {
				return x;
			}
		}
	`)
	require.NoError(t, err)
	sd, ok := prog.Statements[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, []string{"x", "y"}, sd.Fields)
	require.Len(t, sd.Methods, 1)
}

func TestParseTryCatchThrow(t *testing.T) {
	prog, err := ParseProgramString(`
		try {
			throw "boom";
		} catch (e) {
			print(e);
		}
	`)
	require.NoError(t, err)
	ts, ok := prog.Statements[0].(*ast.TryStmt)
	require.True(t, ok)
	require.Equal(t, "e", ts.CatchVar)
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog, err := ParseProgramString(`var r = 1 + 2 * 3;`)
	require.NoError(t, err)
	decl := prog.Statements[0].(*ast.VarDecl)
	bin := decl.Value.(*ast.BinaryExpr)
	require.Equal(t, "+", bin.Op)
	rightMul := bin.Right.(*ast.BinaryExpr)
	require.Equal(t, "*", rightMul.Op)
}

func TestParseErrorOnUnclosedBlock(t *testing.T) {
	_, err := ParseProgramString(`if (true) {`)
	require.Error(t, err)
}
