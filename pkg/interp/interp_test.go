package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"covlang/pkg/cell"
	"covlang/pkg/compiler"
	"covlang/pkg/registry"
)

func run(t *testing.T, source string) *cell.Any {
	t.Helper()
	prog, err := compiler.New().Compile(source)
	require.NoError(t, err)
	in := New(registry.NewPopulated(nil))
	v, err := in.Run(prog)
	require.NoError(t, err)
	return v
}

func TestArithmeticAndVars(t *testing.T) {
	v := run(t, `var x = 1 + 2 * 3; x;`)
	require.Equal(t, "7", v.ToString())
}

func TestIfElse(t *testing.T) {
	v := run(t, `
		var x = 5;
		if (x > 3) {
			x = 1;
		} else {
			x = 0;
		}
		x;
	`)
	require.Equal(t, "1", v.ToString())
}

func TestWhileLoopAndBreak(t *testing.T) {
	v := run(t, `
		var i = 0;
		var total = 0;
		while (true) {
			if (i >= 5) {
				break;
			}
			total = total + i;
			i = i + 1;
		}
		total;
	`)
	require.Equal(t, "10", v.ToString())
}

func TestForLoop(t *testing.T) {
	v := run(t, `
		var total = 0;
		for (var i = 0; i < 4; i = i + 1) {
			total = total + i;
		}
		total;
	`)
	require.Equal(t, "6", v.ToString())
}

func TestFunctionCallAndRecursion(t *testing.T) {
	v := run(t, `
		function fib(n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		fib(10);
	`)
	require.Equal(t, "55", v.ToString())
}

func TestStructFieldsAndMethods(t *testing.T) {
	v := run(t, `
		struct Point {
			x;
			y;
			function sum() {
				return this.x + this.y;
			}
		}
		var p = Point(3, 4);
		p.sum();
	`)
	require.Equal(t, "7", v.ToString())
}

func TestTryCatchThrow(t *testing.T) {
	v := run(t, `
		var caught = "";
		try {
			throw "boom";
		} catch (e) {
			caught = e;
		}
		caught;
	`)
	require.Equal(t, "boom", v.ToString())
}

func TestListPushAndForeach(t *testing.T) {
	v := run(t, `
		var items = list();
		items.push(1);
		items.push(2);
		items.push(3);
		var total = 0;
		foreach (item in items) {
			total = total + item;
		}
		total;
	`)
	require.Equal(t, "6", v.ToString())
}

func TestStringConcatenation(t *testing.T) {
	v := run(t, `var s = "hello" + " " + "world"; s;`)
	require.Equal(t, "hello world", v.ToString())
}

func TestConstForbidsReassignment(t *testing.T) {
	prog, err := compiler.New().Compile(`
		const x = 1;
		x = 2;
	`)
	require.NoError(t, err)
	in := New(registry.NewPopulated(nil))
	_, err = in.Run(prog)
	require.Error(t, err)
}
