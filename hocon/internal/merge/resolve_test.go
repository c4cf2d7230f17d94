package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/hocon/internal/path"
)

func TestResolveSimpleSubstitution(t *testing.T) {
	root := NewObject(pos(), fieldsOf(
		"host", NewString(pos(), "localhost"),
		"greeting", NewSubstitution(pos(), path.New("host"), false),
	))

	out, err := Resolve(root, nil)
	require.NoError(t, err)

	g, _ := out.Fields.Get("greeting")
	assert.Equal(t, "localhost", g.Str)
}

func TestResolveOptionalMissingBecomesNull(t *testing.T) {
	root := NewObject(pos(), fieldsOf(
		"a", NewSubstitution(pos(), path.New("missing"), true),
	))

	out, err := Resolve(root, nil)
	require.NoError(t, err)

	require.Equal(t, 1, out.Fields.Len())

	a, _ := out.Fields.Get("a")
	assert.Equal(t, KindNull, a.Kind)
}

func TestResolveRequiredMissingErrors(t *testing.T) {
	root := NewObject(pos(), fieldsOf(
		"a", NewSubstitution(pos(), path.New("missing"), false),
	))

	_, err := Resolve(root, nil)
	require.ErrorIs(t, err, ErrSubstitutionNotFound)
}

func TestResolveCrossKeyCycle(t *testing.T) {
	root := NewObject(pos(), fieldsOf(
		"a", NewSubstitution(pos(), path.New("b"), false),
		"b", NewSubstitution(pos(), path.New("a"), false),
	))

	_, err := Resolve(root, nil)
	require.ErrorIs(t, err, ErrCycle)
}

func TestResolveOptionalCrossKeyCycleBecomesNull(t *testing.T) {
	root := NewObject(pos(), fieldsOf(
		"a", NewSubstitution(pos(), path.New("b"), true),
		"b", NewSubstitution(pos(), path.New("a"), true),
	))

	out, err := Resolve(root, nil)
	require.NoError(t, err)

	a, _ := out.Fields.Get("a")
	b, _ := out.Fields.Get("b")
	assert.Equal(t, KindNull, a.Kind)
	assert.Equal(t, KindNull, b.Kind)
}

func TestResolveEnvironmentFallback(t *testing.T) {
	root := NewObject(pos(), fieldsOf(
		"name", NewSubstitution(pos(), path.New("USER_NAME"), false),
	))

	out, err := Resolve(root, func(name string) (string, bool) {
		if name == "USER_NAME" {
			return "ada", true
		}

		return "", false
	})
	require.NoError(t, err)

	n, _ := out.Fields.Get("name")
	assert.Equal(t, "ada", n.Str)
}

func TestResolveSelfReferentialAppend(t *testing.T) {
	prior := NewArray(pos(), []*Value{NewNumber(pos(), intNum(1))})
	rhs := NewConcat(pos(),
		[]*Value{NewSubstitution(pos(), path.New("p"), false), NewArray(pos(), []*Value{NewNumber(pos(), intNum(2))})},
		[]bool{true},
	)

	dr, err := Replace(prior, rhs)
	require.NoError(t, err)
	require.Equal(t, KindDelayReplacement, dr.Kind)

	root := NewObject(pos(), fieldsOf("p", dr))

	out, err := Resolve(root, nil)
	require.NoError(t, err)

	p, _ := out.Fields.Get("p")
	require.Equal(t, KindArray, p.Kind)
	require.Len(t, p.Elems, 2)
}
