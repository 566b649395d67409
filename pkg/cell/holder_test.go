package cell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type point struct{ x, y int }

func init() {
	RegisterOps(&Ops[point]{
		TypeName: "point",
		Equal:    func(a, b point) bool { return a == b },
		Integer:  func(v point) int64 { return int64(v.x + v.y) },
		String:   func(v point) string { return "point" },
		Hash:     func(v point) uint64 { return uint64(v.x)<<32 | uint64(uint32(v.y)) },
		Detach:   func(v *point) {},
		Ext:      func() (Namespace, bool) { return Namespace{"origin": Make[point](point{})}, true },
	})
}

func TestHolderDuplicateIsIndependent(t *testing.T) {
	a := Make[point](point{1, 2})
	b := a.Copy()

	v, err := Val[point](b, false)
	require.NoError(t, err)
	v.x = 99

	av, _ := ConstVal[point](a)
	require.Equal(t, point{1, 2}, *av)
}

func TestHolderTypeMismatch(t *testing.T) {
	a := Make[point](point{1, 2})
	_, err := Val[int64](a, false)
	requireCode(t, err, CodeTypeMismatch)
}

func TestHolderEmptyAccess(t *testing.T) {
	var a Any
	_, err := Val[point](&a, false)
	requireCode(t, err, CodeEmptyAccess)
}

func TestGetExt(t *testing.T) {
	a := Make[point](point{1, 2})
	ns, err := a.GetExt()
	require.NoError(t, err)
	require.Contains(t, ns, "origin")
}

func TestGetExtUnsupported(t *testing.T) {
	a := Make[int64](1)
	_, err := a.GetExt()
	require.ErrorIs(t, err, ErrNoExtensions)
}

func TestGetExtOnEmptyCell(t *testing.T) {
	var a Any
	_, err := a.GetExt()
	require.ErrorIs(t, err, ErrNoExtensions)
}

func TestReleaseFreesAtZeroRefcount(t *testing.T) {
	a := Make[point](point{1, 2})
	b := a.Copy()
	require.Equal(t, 2, a.RefCount())

	b.Release()
	require.Equal(t, 1, a.RefCount())

	a.Release()
	require.Equal(t, 0, a.RefCount())
	require.False(t, a.Usable())
}
