package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/hocon/internal/raw"
)

func noIncludes(*raw.Inclusion) (*raw.Value, error) {
	return nil, assert.AnError
}

func TestLowerDottedKeyExpansion(t *testing.T) {
	root := raw.NewObject(raw.Position{}, []raw.ObjectField{
		{Key: []string{"a", "b", "c"}, Value: raw.NewNumber(raw.Position{}, raw.Number{IsInt: true, Int: 1})},
	})

	out, err := Lower(root, noIncludes)
	require.NoError(t, err)

	a, ok := out.Fields.Get("a")
	require.True(t, ok)
	b, ok := a.Fields.Get("b")
	require.True(t, ok)
	c, ok := b.Fields.Get("c")
	require.True(t, ok)
	assert.EqualValues(t, 1, c.Num.Int)
}

func TestLowerLaterFieldMergesIntoAccumulator(t *testing.T) {
	root := raw.NewObject(raw.Position{}, []raw.ObjectField{
		{Key: []string{"a"}, Value: raw.NewObject(raw.Position{}, []raw.ObjectField{
			{Key: []string{"x"}, Value: raw.NewNumber(raw.Position{}, raw.Number{IsInt: true, Int: 1})},
		})},
		{Key: []string{"a"}, Value: raw.NewObject(raw.Position{}, []raw.ObjectField{
			{Key: []string{"y"}, Value: raw.NewNumber(raw.Position{}, raw.Number{IsInt: true, Int: 2})},
		})},
	})

	out, err := Lower(root, noIncludes)
	require.NoError(t, err)

	a, _ := out.Fields.Get("a")
	assert.Equal(t, []string{"x", "y"}, a.Fields.Keys())
}

func TestLowerSubstitutionPathPreserved(t *testing.T) {
	root := raw.NewObject(raw.Position{}, []raw.ObjectField{
		{Key: []string{"a"}, Value: raw.NewSubstitution(raw.Position{}, []string{"b", "c"}, true)},
	})

	out, err := Lower(root, noIncludes)
	require.NoError(t, err)

	a, _ := out.Fields.Get("a")
	require.Equal(t, KindSubstitution, a.Kind)
	assert.Equal(t, "b.c", a.SubPath.String())
	assert.True(t, a.SubOptional)
}
