package cell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func init() {
	RegisterOps(&Ops[int64]{
		TypeName: "number",
		Equal:    func(a, b int64) bool { return a == b },
		Integer:  func(v int64) int64 { return v },
		String:   func(v int64) string { return intToString(v) },
		Hash:     func(v int64) uint64 { return uint64(v) },
		Detach:   func(v *int64) {},
		Ext:      func() (Namespace, bool) { return nil, false },
	})
	RegisterOps(&Ops[string]{
		TypeName: "string",
		Equal:    func(a, b string) bool { return a == b },
		Integer:  func(v string) int64 { return int64(len(v)) },
		String:   func(v string) string { return v },
		Hash:     func(v string) uint64 { return fnv64(v) },
		Detach:   func(v *string) {},
		Ext:      func() (Namespace, bool) { return nil, false },
	})
	RegisterOps(&Ops[bool]{
		TypeName: "boolean",
		Equal:    func(a, b bool) bool { return a == b },
		Integer:  func(v bool) int64 { if v { return 1 }; return 0 },
		String:   func(v bool) string { if v { return "true" }; return "false" },
		Hash:     func(v bool) uint64 { if v { return 1 }; return 0 },
		Detach:   func(v *bool) {},
		Ext:      func() (Namespace, bool) { return nil, false },
	})
}

func intToString(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// --- Testable property 1: identity preserved across repeated unique access ---

func TestValIdentityPreservedWhenUnique(t *testing.T) {
	c := Make[int64](7)
	p1, err := Val[int64](c, false)
	require.NoError(t, err)
	p2, err := Val[int64](c, false)
	require.NoError(t, err)
	require.Same(t, p1, p2)
}

// --- Testable property 2 / Scenario S1: copy-on-write ---

func TestCopyOnWrite(t *testing.T) {
	a := Make[int64](7)
	b := a.Copy()
	require.True(t, a.IsSame(b))

	v, err := Val[int64](b, false)
	require.NoError(t, err)
	*v = 9

	require.False(t, a.IsSame(b))
	av, err := ConstVal[int64](a)
	require.NoError(t, err)
	require.EqualValues(t, 7, *av)
	bv, err := ConstVal[int64](b)
	require.NoError(t, err)
	require.EqualValues(t, 9, *bv)
}

// --- Testable property 3: escalation monotonicity ---

func TestEscalationRefusesDowngrade(t *testing.T) {
	c := MakeConstant[int64](1)
	requireCode(t, c.Protect(), CodeDowngrade)
	require.NoError(t, c.Single())
	require.NoError(t, c.Single()) // idempotent at the same level
}

// --- Testable property 4: to_string round trips ---

func TestToStringRoundTrip(t *testing.T) {
	require.Equal(t, "hi", Make[string]("hi").ToString())
	require.Equal(t, "true", Make[bool](true).ToString())
	require.Equal(t, "false", Make[bool](false).ToString())
	require.Equal(t, "Null", (&Any{}).ToString())
}

// --- Testable property 5/6: hash and empty-cell equality ---

func TestHashEqualityAndEmptyCells(t *testing.T) {
	a := Make[int64](42)
	b := Make[int64](42)
	require.True(t, a.Compare(b))
	require.Equal(t, a.Hash(), b.Hash())

	var e1, e2 Any
	require.True(t, e1.Compare(&e2))
	require.Equal(t, e1.Hash(), e2.Hash())
}

// --- Testable property 7/8: swap symmetry and raw-swap aliasing ---

func TestSwapSymmetry(t *testing.T) {
	a := Make[int64](1)
	b := Make[int64](2)

	require.NoError(t, a.Swap(b, false))
	av, _ := ConstVal[int64](a)
	bv, _ := ConstVal[int64](b)
	require.EqualValues(t, 2, *av)
	require.EqualValues(t, 1, *bv)

	require.NoError(t, a.Swap(b, false))
	av, _ = ConstVal[int64](a)
	bv, _ = ConstVal[int64](b)
	require.EqualValues(t, 1, *av)
	require.EqualValues(t, 2, *bv)
}

func TestRawSwapAffectsAliases(t *testing.T) {
	a := Make[int64](1)
	b := Make[int64](2)
	c := a.Copy()

	require.NoError(t, a.Swap(b, true))
	cv, _ := ConstVal[int64](c)
	require.EqualValues(t, 2, *cv)

	d := Make[int64](10)
	e := Make[int64](20)
	f := d.Copy()
	require.NoError(t, d.Swap(e, false))
	fv, _ := ConstVal[int64](f)
	require.EqualValues(t, 10, *fv)
}

// --- Scenario S2: constant refuses mutation ---

func TestConstantRefusesMutation(t *testing.T) {
	c := MakeConstant[string]("x")
	_, err := Val[string](c, false)
	requireCode(t, err, CodeWriteForbidden)

	v, err := ConstVal[string](c)
	require.NoError(t, err)
	require.Equal(t, "x", *v)
}

// --- Scenario S3: raw swap fails when protected ---

func TestRawSwapFailsWhenProtected(t *testing.T) {
	a := MakeProtect[int64](1)
	b := Make[int64](2)
	err := a.Swap(b, true)
	requireCode(t, err, CodeRawMutationForbidden)
}

// --- Scenario S4: try_move drops protection ---

func TestTryMoveDropsProtection(t *testing.T) {
	a := MakeProtect[int64](5)
	a.TryMove()
	require.False(t, a.IsProtect())
	require.True(t, a.IsRvalue())
}

// --- Scenario S5: single forbids clone ---

func TestSingleForbidsClone(t *testing.T) {
	a := MakeSingle[int64](3)
	requireCode(t, a.Clone(), CodeSingleForbidsClone)
}

func requireCode(t *testing.T, err error, want Code) {
	t.Helper()
	require.Error(t, err)
	got, ok := CodeOf(err)
	require.True(t, ok, "error %v carries no core Code", err)
	require.Equal(t, want, got)
}
