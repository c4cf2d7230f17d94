package hocon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/hocon"
	"go.jacobcolvin.com/hocon/stringtest"
)

func mustString(t *testing.T, v *hocon.Value, path ...string) string {
	t.Helper()

	found, ok := v.GetPath(path...)
	require.True(t, ok, "path %v not found", path)

	s, err := found.AsString()
	require.NoError(t, err)

	return s
}

func mustInt(t *testing.T, v *hocon.Value, path ...string) int64 {
	t.Helper()

	found, ok := v.GetPath(path...)
	require.True(t, ok, "path %v not found", path)

	n, err := found.AsNumber()
	require.NoError(t, err)

	return n.Int
}

func TestParseStringBasicSubstitution(t *testing.T) {
	src := stringtest.JoinLF(
		`host = "localhost"`,
		`port = 8080`,
		`url = "http://"${host}":"${port}`,
	)

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", mustString(t, v, "url"))
}

func TestParseStringObjectMergeReplacement(t *testing.T) {
	src := stringtest.JoinLF(
		`a { x = 1, y = 2 }`,
		`a { y = 3, z = 4 }`,
	)

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	assert.EqualValues(t, 1, mustInt(t, v, "a", "x"))
	assert.EqualValues(t, 3, mustInt(t, v, "a", "y"))
	assert.EqualValues(t, 4, mustInt(t, v, "a", "z"))
}

func TestParseStringAddAssign(t *testing.T) {
	src := stringtest.JoinLF(
		`list = [1, 2]`,
		`list += 3`,
	)

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	arr, ok := v.GetPath("list")
	require.True(t, ok)

	elems, err := arr.AsArray()
	require.NoError(t, err)
	require.Len(t, elems, 3)

	n3, err := elems[2].AsNumber()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n3.Int)
}

func TestParseStringDottedKeyExpansion(t *testing.T) {
	src := `a.b.c = 42`

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	assert.EqualValues(t, 42, mustInt(t, v, "a", "b", "c"))
}

func TestParseStringOptionalMissingSubstitutionBecomesNull(t *testing.T) {
	src := stringtest.JoinLF(
		`x = ${?MISSING}`,
		`y = ${?MISSING}fallback`,
	)

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	x, ok := v.GetPath("x")
	require.True(t, ok)
	assert.Equal(t, hocon.Null, x.Type())

	assert.Equal(t, "fallback", mustString(t, v, "y"))
}

func TestParseStringRequiredMissingSubstitutionErrors(t *testing.T) {
	src := `a = ${missing}`

	_, err := hocon.ParseString(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, hocon.ErrSubstitutionNotFound)
}

func TestParseStringSelfReferentialArrayAppend(t *testing.T) {
	src := stringtest.JoinLF(
		`p = [1]`,
		`p = ${p} [2]`,
	)

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	arr, err := mustArray(t, v, "p")
	require.NoError(t, err)
	require.Len(t, arr, 2)
}

func mustArray(t *testing.T, v *hocon.Value, path ...string) ([]*hocon.Value, error) {
	t.Helper()

	found, ok := v.GetPath(path...)
	require.True(t, ok)

	return found.AsArray()
}

func TestParseStringCycleDetection(t *testing.T) {
	src := stringtest.JoinLF(
		`a = ${b}`,
		`b = ${a}`,
	)

	_, err := hocon.ParseString(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, hocon.ErrCycleSubstitution)
}

func TestParseStringOptionalCycleBecomesNull(t *testing.T) {
	src := stringtest.JoinLF(
		`a = ${?b}`,
		`b = ${?a}`,
	)

	v, err := hocon.ParseString(src)
	require.NoError(t, err)

	a, ok := v.GetPath("a")
	require.True(t, ok)
	assert.Equal(t, hocon.Null, a.Type())

	b, ok := v.GetPath("b")
	require.True(t, ok)
	assert.Equal(t, hocon.Null, b.Type())
}

func TestParseStringEnvironmentFallback(t *testing.T) {
	src := `name = ${USER_NAME}`

	v, err := hocon.ParseString(src, hocon.WithEnviron(func() []string {
		return []string{"USER_NAME=ada"}
	}))
	require.NoError(t, err)

	assert.Equal(t, "ada", mustString(t, v, "name"))
}

func TestFromMap(t *testing.T) {
	v, err := hocon.FromMap(map[string]any{
		"a": 1,
		"b": []any{"x", "y"},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, mustInt(t, v, "a"))
}
