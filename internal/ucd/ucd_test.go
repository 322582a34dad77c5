package ucd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_twoLetter(t *testing.T) {
	nd, err := Category("Nd")
	assert.NoError(t, err)
	assert.True(t, nd.Contains(int('5')))
	assert.False(t, nd.Contains(int('a')))
}

func TestCategory_singleLetterUmbrella(t *testing.T) {
	l, err := Category("L")
	assert.NoError(t, err)
	assert.True(t, l.Contains(int('a')), "Ll member")
	assert.True(t, l.Contains(int('A')), "Lu member")
	assert.False(t, l.Contains(int('5')))

	lu, _ := Category("Lu")
	ll, _ := Category("Ll")
	assert.True(t, l.IsSuperset(lu))
	assert.True(t, l.IsSuperset(ll))
}

func TestCategory_casedLetterAlias(t *testing.T) {
	cased, err := Category("L&")
	assert.NoError(t, err)

	lu, _ := Category("Lu")
	ll, _ := Category("Ll")
	lt, _ := Category("Lt")
	lm, _ := Category("Lm")

	assert.True(t, cased.IsSuperset(lu))
	assert.True(t, cased.IsSuperset(ll))
	assert.True(t, cased.IsSuperset(lt))
	assert.False(t, cased.IsSuperset(lm) && !lm.Empty() && cased.Equal(lm), "L& must not silently equal Lm")
	assert.False(t, cased.Contains(int('_')))
}

func TestCategory_unknown(t *testing.T) {
	_, err := Category("Zzzz_not_real")
	assert.Error(t, err)
}

func TestHorizontalAndVertical(t *testing.T) {
	assert.True(t, Horizontal.Contains(0x20))
	assert.True(t, Horizontal.Contains(0x2005))
	assert.False(t, Horizontal.Contains(0x0A))

	assert.True(t, Vertical.Contains(0x0A))
	assert.True(t, Vertical.Contains(0x2029))
	assert.False(t, Vertical.Contains(0x20))
}

func TestCodespaceBounds(t *testing.T) {
	assert.True(t, Codespace.Contains(0))
	assert.True(t, Codespace.Contains(MaxCodePoint))
	assert.False(t, Codespace.Contains(MaxCodePoint+1))
}
