package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Value {
	t.Helper()

	v, err := Parse(NewSliceReader([]byte(src)), 0)
	require.NoError(t, err)

	return v
}

func TestParseSimpleObject(t *testing.T) {
	v := parse(t, `a = 1, b = "two", c = true, d = null`)

	require.Equal(t, KindObject, v.Kind)
	require.Len(t, v.Fields, 4)

	assert.Equal(t, []string{"a"}, v.Fields[0].Key)
	assert.EqualValues(t, 1, v.Fields[0].Value.Num.Int)
	assert.Equal(t, "two", v.Fields[1].Value.Str)
	assert.True(t, v.Fields[2].Value.Bool)
	assert.Equal(t, KindNull, v.Fields[3].Value.Kind)
}

func TestParseImplicitObjectBrace(t *testing.T) {
	v := parse(t, `{ a = 1 }`)

	require.Equal(t, KindObject, v.Kind)
	require.Len(t, v.Fields, 1)
}

func TestParseNestedObjectWithoutSeparator(t *testing.T) {
	v := parse(t, `a { b = 1 }`)

	require.Len(t, v.Fields, 1)
	assert.Equal(t, KindObject, v.Fields[0].Value.Kind)
}

func TestParseArray(t *testing.T) {
	v := parse(t, `xs = [1, 2, 3]`)

	arr := v.Fields[0].Value
	require.Equal(t, KindArray, arr.Kind)
	require.Len(t, arr.Elems, 3)
}

func TestParseAddAssign(t *testing.T) {
	v := parse(t, `xs += 1`)

	require.Equal(t, KindAddAssign, v.Fields[0].Value.Kind)
}

func TestParseConcatenationWithWhitespace(t *testing.T) {
	v := parse(t, `greeting = hello world`)

	val := v.Fields[0].Value
	require.Equal(t, KindConcat, val.Kind)
	require.Len(t, val.Elems, 2)
	assert.True(t, val.HasSpace[0])
	assert.Equal(t, "hello", val.Elems[0].Str)
	assert.Equal(t, "world", val.Elems[1].Str)
}

func TestParseSubstitution(t *testing.T) {
	v := parse(t, `a = ${foo.bar}`)

	sub := v.Fields[0].Value
	require.Equal(t, KindSubstitution, sub.Kind)
	assert.Equal(t, []string{"foo", "bar"}, sub.SubPath)
	assert.False(t, sub.SubOptional)
}

func TestParseOptionalSubstitution(t *testing.T) {
	v := parse(t, `a = ${?foo}`)

	sub := v.Fields[0].Value
	assert.True(t, sub.SubOptional)
}

func TestParseDottedKey(t *testing.T) {
	v := parse(t, `a.b.c = 1`)

	assert.Equal(t, []string{"a", "b", "c"}, v.Fields[0].Key)
}

func TestParseInclusion(t *testing.T) {
	v := parse(t, `include "foo.conf"`)

	require.Len(t, v.Fields, 1)
	require.NotNil(t, v.Fields[0].Inclusion)
	assert.Equal(t, "foo.conf", v.Fields[0].Inclusion.RawPath)
	assert.False(t, v.Fields[0].Inclusion.Required)
}

func TestParseRequiredFileInclusion(t *testing.T) {
	v := parse(t, `include required(file("foo.conf"))`)

	inc := v.Fields[0].Inclusion
	require.NotNil(t, inc)
	assert.True(t, inc.Required)
	assert.Equal(t, LocFile, inc.Location)
	assert.Equal(t, "foo.conf", inc.RawPath)
}

func TestParseTripleQuotedString(t *testing.T) {
	v := parse(t, "a = \"\"\"hello\nworld\"\"\"")

	assert.Equal(t, "hello\nworld", v.Fields[0].Value.Str)
}

func TestParseRootArrayErrors(t *testing.T) {
	_, err := Parse(NewSliceReader([]byte(`[1, 2]`)), 0)
	assert.Error(t, err)
}

func TestParseDepthExceeded(t *testing.T) {
	src := ""
	for range 10 {
		src += "a { "
	}

	src += "b = 1"

	for range 10 {
		src += " }"
	}

	_, err := Parse(NewSliceReader([]byte(src)), 5)
	assert.Error(t, err)
}
