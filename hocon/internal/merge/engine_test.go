package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/hocon/internal/raw"
)

func pos() raw.Position { return raw.Position{} }

func intNum(i int64) raw.Number { return raw.Number{IsInt: true, Int: i} }

func TestReplaceObjectDeepMerge(t *testing.T) {
	left := NewObject(pos(), fieldsOf("x", NewNumber(pos(), intNum(1)), "y", NewNumber(pos(), intNum(2))))
	right := NewObject(pos(), fieldsOf("y", NewNumber(pos(), intNum(3)), "z", NewNumber(pos(), intNum(4))))

	out, err := Replace(left, right)
	require.NoError(t, err)
	require.Equal(t, KindObject, out.Kind)

	assert.Equal(t, []string{"x", "y", "z"}, out.Fields.Keys())

	y, _ := out.Fields.Get("y")
	assert.EqualValues(t, 3, y.Num.Int)
}

func TestReplaceArrayWithScalarReplaces(t *testing.T) {
	left := NewArray(pos(), []*Value{NewNumber(pos(), intNum(1))})
	right := NewString(pos(), "x")

	out, err := Replace(left, right)
	require.NoError(t, err)
	assert.Equal(t, KindString, out.Kind)
	assert.Equal(t, "x", out.Str)
}

func TestReplaceNoneAddAssignExpandsToArray(t *testing.T) {
	left := NewNone(pos())
	right := NewAddAssign(pos(), NewNumber(pos(), intNum(7)))

	out, err := Replace(left, right)
	require.NoError(t, err)
	require.Equal(t, KindArray, out.Kind)
	require.Len(t, out.Elems, 1)
	assert.EqualValues(t, 7, out.Elems[0].Num.Int)
}

func TestReplaceObjectAddAssignErrors(t *testing.T) {
	left := NewObject(pos(), NewFields())
	right := NewAddAssign(pos(), NewNumber(pos(), intNum(1)))

	_, err := Replace(left, right)
	assert.Error(t, err)
}

func TestConcatScalarRendersWithSeparator(t *testing.T) {
	left := NewString(pos(), "hello")
	right := NewString(pos(), "world")

	out, err := Concat(left, true, right)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.Str)

	out, err = Concat(left, false, right)
	require.NoError(t, err)
	assert.Equal(t, "helloworld", out.Str)
}

func TestConcatArrayElementwiseAppend(t *testing.T) {
	left := NewArray(pos(), []*Value{NewNumber(pos(), intNum(1))})
	right := NewArray(pos(), []*Value{NewNumber(pos(), intNum(2))})

	out, err := Concat(left, false, right)
	require.NoError(t, err)
	require.Len(t, out.Elems, 2)
}

func TestConcatObjectWithArrayErrors(t *testing.T) {
	left := NewObject(pos(), NewFields())
	right := NewArray(pos(), nil)

	_, err := Concat(left, false, right)
	assert.Error(t, err)
}

func TestSelfReferentialArrayReplaceViaConcat(t *testing.T) {
	// Array row + Concat column: tryEval succeeds (no substitution) and
	// the result is an array, so replace becomes elementwise concat.
	left := NewArray(pos(), []*Value{NewNumber(pos(), intNum(1))})
	right := NewConcat(pos(),
		[]*Value{NewArray(pos(), []*Value{NewNumber(pos(), intNum(2))})},
		nil,
	)

	out, err := Replace(left, right)
	require.NoError(t, err)
	require.Equal(t, KindArray, out.Kind)
	require.Len(t, out.Elems, 2)
}

func TestDelayReplacementFlattensNested(t *testing.T) {
	sub := NewSubstitution(pos(), nil, false)
	left := NewObject(pos(), NewFields())

	dr, err := Replace(left, sub)
	require.NoError(t, err)
	require.Equal(t, KindDelayReplacement, dr.Kind)
	require.Len(t, dr.Elems, 2)

	dr2, err := Replace(dr, NewNumber(pos(), intNum(1)))
	require.NoError(t, err)
	require.Equal(t, KindDelayReplacement, dr2.Kind)
	require.Len(t, dr2.Elems, 3, "flattens the existing DelayReplacement rather than nesting")
}

func fieldsOf(kv ...any) *Fields {
	f := NewFields()
	for i := 0; i < len(kv); i += 2 {
		f.Set(kv[i].(string), kv[i+1].(*Value))
	}

	return f
}
