package context

import (
	"testing"

	"github.com/stretchr/testify/require"

	"covlang/pkg/cell"
)

func TestEvalReturnsLastExpression(t *testing.T) {
	c := New(nil)
	v, err := c.Eval(`var x = 2 + 3; x;`)
	require.NoError(t, err)
	require.Equal(t, "5", v.ToString())
}

func TestSubcontextHasIndependentScope(t *testing.T) {
	c := New(nil)
	_, err := c.Eval(`var shared = 1;`)
	require.NoError(t, err)

	sub := c.NewSubcontext()
	v, err := sub.Eval(`shared;`)
	require.Error(t, err)
	require.Nil(t, v)
}

func TestResolveSDKPathDefaultsToExecutableDir(t *testing.T) {
	t.Setenv("LANG_SDK_PATH", "")
	path := ResolveSDKPath()
	require.NotEmpty(t, path)
}

func TestResolveSDKPathHonorsEnvOverride(t *testing.T) {
	t.Setenv("LANG_SDK_PATH", "/opt/custom/sdk")
	require.Equal(t, "/opt/custom/sdk", ResolveSDKPath())
}

// TestContextBootstrap is Scenario S6. It lives here rather than in
// pkg/cell because asserting on the full top-level scope needs a built
// Context (compiler + interpreter + registry), and pkg/cell cannot import
// pkg/context without a cycle.
func TestContextBootstrap(t *testing.T) {
	c := New([]string{"script", "--flag"})

	names := []string{
		"char", "number", "boolean", "pointer", "string", "list", "array",
		"pair", "hash_map", "context", "to_integer", "to_string", "type",
		"clone", "move", "swap", "exception", "iostream", "system",
		"runtime", "math",
	}
	for _, name := range names {
		v, ok := c.Interp.Global().Lookup(name)
		require.True(t, ok, "top-level scope missing %q", name)
		require.True(t, v.Usable(), "%q is bound to an empty cell", name)
	}

	ctxCell, ok := c.Interp.Global().Lookup("context")
	require.True(t, ok)
	require.True(t, ctxCell.IsSingle())
	handle, err := cell.ConstVal[ContextHandle](ctxCell)
	require.NoError(t, err)
	require.Same(t, c, handle.C)
}
