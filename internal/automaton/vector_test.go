package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/lexforge/internal/regex"
)

func TestVector_nullableNamesPreservesOrder(t *testing.T) {
	a, err := regex.Parse("a*")
	require.NoError(t, err)
	b, err := regex.Parse("b")
	require.NoError(t, err)
	c, err := regex.Parse("c*")
	require.NoError(t, err)

	v := New([]string{"A", "B", "C"}, []*regex.Term{a, b, c})
	assert.Equal(t, []string{"A", "C"}, v.NullableNames())
}

func TestVector_keyIsElementwise(t *testing.T) {
	a, _ := regex.Parse("a")
	b, _ := regex.Parse("a")

	v1 := New([]string{"X"}, []*regex.Term{a})
	v2 := New([]string{"X"}, []*regex.Term{b})
	assert.Equal(t, v1.Key(), v2.Key())

	v3 := New([]string{"Y"}, []*regex.Term{a})
	assert.NotEqual(t, v1.Key(), v3.Key(), "different names must not collide")
}

func TestVector_nullVectorIsNeverNullable(t *testing.T) {
	a, _ := regex.Parse("a*")
	v := New([]string{"A"}, []*regex.Term{a})
	nv := v.NullVector()
	assert.Empty(t, nv.NullableNames())
	assert.Equal(t, v.Names(), nv.Names())
}

func TestVector_derivativeAdvancesAllElements(t *testing.T) {
	a, _ := regex.Parse("ab")
	b, _ := regex.Parse("a.")
	v := New([]string{"A", "B"}, []*regex.Term{a, b})

	v2 := v.Derivative(int('a'))
	assert.Empty(t, v2.NullableNames(), "neither \"b\" nor \".\" (the derivatives) is nullable")
}
