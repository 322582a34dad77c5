package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGocode_isSelfContained(t *testing.T) {
	a := buildTestAutomaton(t)
	src, err := Gocode(a, "tokens", "BuildLexer")
	require.NoError(t, err)

	assert.Contains(t, src, "package tokens")
	assert.NotContains(t, src, "lexforge/internal/automaton", "generated file must not depend on this module at all")
	assert.NotContains(t, src, "UnmarshalBinary")

	assert.Contains(t, src, "\"bufio\"")
	assert.Contains(t, src, "\"io\"")
	assert.Contains(t, src, "\"sort\"")
	assert.NotContains(t, src, "\"fmt\"")
	assert.NotContains(t, src, "\"errors\"")

	assert.Contains(t, src, "func BuildLexer(r io.Reader) func() (token string, lexeme string, err error)")
	assert.Contains(t, src, "BuildLexerTransitions")
	assert.Contains(t, src, "BuildLexerAccepts")
	assert.Contains(t, src, "BuildLexerErrorState")
}

func TestGocode_embedsAcceptingTokenNames(t *testing.T) {
	a := buildTestAutomaton(t)
	src, err := Gocode(a, "tokens", "BuildLexer")
	require.NoError(t, err)

	assert.Contains(t, src, `"AB"`)
}
