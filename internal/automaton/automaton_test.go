package automaton

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/lexforge/internal/regex"
)

// buildFromSource parses each (name, source) pair and constructs the
// resulting Automaton, failing the test on any parse error.
func buildFromSource(t *testing.T, pairs [][2]string) *Automaton {
	t.Helper()
	names := make([]string, len(pairs))
	terms := make([]*regex.Term, len(pairs))
	for i, p := range pairs {
		term, err := regex.Parse(p[1])
		require.NoError(t, err, "parsing %q", p[1])
		names[i] = p[0]
		terms[i] = term
	}
	return Build(New(names, terms))
}

// runeScanner builds a Scanner[rune] over s, the common case for testing.
func runeScanner(a *Automaton, s string) *Scanner[rune] {
	runes := []rune(s)
	i := 0
	source := func() (rune, bool) {
		if i >= len(runes) {
			return 0, false
		}
		r := runes[i]
		i++
		return r, true
	}
	return NewScanner(a, source, func(r rune) int { return int(r) }, func(rs []rune) string { return string(rs) })
}

func collectTokens(t *testing.T, s *Scanner[rune]) ([]Token, error) {
	t.Helper()
	var out []Token
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}

func TestAutomaton_invariants(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"A", "a+"}, {"AB", "ab"}})

	assert.Empty(t, a.Accepts(a.ErrorState()), "error state must never accept")
	for q := 0; q < a.NumStates(); q++ {
		ts := a.Transitions(q)
		for i := 1; i < len(ts); i++ {
			assert.True(t, ts[i].First > ts[i-1].Last, "transitions in state %d must be sorted and disjoint", q)
		}
		for _, tr := range ts {
			assert.True(t, tr.To >= 0 && tr.To < a.NumStates(), "transition target must be a valid state")
		}
	}
}

func TestScanner_longestMatchBeatsPriority(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"A", "a+"}, {"AB", "ab"}})
	toks, err := collectTokens(t, runeScanner(a, "ab"))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Token{Name: "AB", Text: "ab"}, toks[0])
}

func TestScanner_priorityTieBreak(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"ID", "[a-z]+"}, {"KW_IF", "if"}})
	toks, err := collectTokens(t, runeScanner(a, "if"))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Token{Name: "KW_IF", Text: "if"}, toks[0])
}

func TestScanner_longestMatchDominatesPriority(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"ID", "[a-z]+"}, {"KW_IF", "if"}})
	toks, err := collectTokens(t, runeScanner(a, "iffy"))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Token{Name: "ID", Text: "iffy"}, toks[0])
}

func TestScanner_noMatchError(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"D", "[0-9]+"}})
	s := runeScanner(a, "12 34")

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, Token{Name: "D", Text: "12"}, first)

	_, err = s.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestScanner_multipleTokensWithWhitespace(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"WS", `[ \t\n]+`}, {"N", "[0-9]+"}})
	toks, err := collectTokens(t, runeScanner(a, " 42 "))
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Token{Name: "WS", Text: " "}, toks[0])
	assert.Equal(t, Token{Name: "N", Text: "42"}, toks[1])
	assert.Equal(t, Token{Name: "WS", Text: " "}, toks[2])
}

func TestScanner_intersectionPattern(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"AND", "[ab]*&[bc]*"}})
	toks, err := collectTokens(t, runeScanner(a, "bbb"))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Token{Name: "AND", Text: "bbb"}, toks[0])
}

func TestAutomaton_marshalRoundTrip(t *testing.T) {
	a := buildFromSource(t, [][2]string{{"A", "a+"}, {"AB", "ab"}})

	data, err := a.MarshalBinary()
	require.NoError(t, err)

	var restored Automaton
	require.NoError(t, restored.UnmarshalBinary(data))

	assert.Equal(t, a.NumStates(), restored.NumStates())
	assert.Equal(t, a.ErrorState(), restored.ErrorState())
	for q := 0; q < a.NumStates(); q++ {
		assert.Equal(t, a.Transitions(q), restored.Transitions(q))
		assert.Equal(t, a.Accepts(q), restored.Accepts(q))
	}

	toks, err := collectTokens(t, runeScanner(&restored, "ab"))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Token{Name: "AB", Text: "ab"}, toks[0])
}
