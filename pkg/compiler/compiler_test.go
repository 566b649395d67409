package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileValidProgram(t *testing.T) {
	prog, err := New().Compile(`
		function fib(n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		var r = fib(5);
	`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
}

func TestCompileRejectsBreakOutsideLoop(t *testing.T) {
	_, err := New().Compile(`break;`)
	require.Error(t, err)
}

func TestCompileRejectsContinueOutsideLoop(t *testing.T) {
	_, err := New().Compile(`continue;`)
	require.Error(t, err)
}

func TestCompileRejectsReturnOutsideFunction(t *testing.T) {
	_, err := New().Compile(`return 1;`)
	require.Error(t, err)
}

func TestCompileAllowsBreakInsideLoop(t *testing.T) {
	_, err := New().Compile(`
		while (true) {
			break;
		}
	`)
	require.NoError(t, err)
}

func TestCompileRulesCoverGrammar(t *testing.T) {
	rules := New().Rules()
	require.NotEmpty(t, rules)
	found := false
	for _, r := range rules {
		if r.Keyword == "foreach" {
			found = true
		}
	}
	require.True(t, found)
}
