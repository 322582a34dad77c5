package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLexicon = `
format = "1.0"
type = "lexicon"

[tokens]
DIGIT = "[0-9]"
NUMBER = "<DIGIT>+"
_FRAG = "a|b"
WORD = "(<_FRAG>)+"
`

func TestParseLexiconSource_ordersSectionsAndNames(t *testing.T) {
	lex, err := parseLexiconSource([]byte(sampleLexicon))
	require.NoError(t, err)
	require.Len(t, lex.Sections, 1)

	sec := lex.Sections[0]
	assert.Equal(t, "tokens", sec.Name)

	var names []string
	for _, p := range sec.Patterns {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"DIGIT", "NUMBER", "_FRAG", "WORD"}, names)
}

func TestParseLexiconSource_interpolatesReferences(t *testing.T) {
	lex, err := parseLexiconSource([]byte(sampleLexicon))
	require.NoError(t, err)

	sec, _ := lex.Section("tokens")
	var number, word string
	for _, p := range sec.Patterns {
		switch p.Name {
		case "NUMBER":
			number = p.Source
		case "WORD":
			word = p.Source
		}
	}
	assert.Equal(t, "[0-9]+", number)
	assert.Equal(t, "(a|b)+", word)
}

func TestResolveValue_circularReferenceHitsDepthLimit(t *testing.T) {
	section := map[string]string{
		"A": "<B>",
		"B": "<A>",
	}
	_, err := resolveValue(section, "A", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterpolationTooDeep)
}

func TestResolveValue_undefinedReference(t *testing.T) {
	section := map[string]string{"A": "<NOPE>"}
	_, err := resolveValue(section, "A", 0)
	require.Error(t, err)
}

func TestBuildSection_skipsUnderscorePrefixedNames(t *testing.T) {
	lex, err := parseLexiconSource([]byte(sampleLexicon))
	require.NoError(t, err)

	a, err := lex.Build("tokens")
	require.NoError(t, err)
	require.NotNil(t, a)

	for q := 0; q < a.NumStates(); q++ {
		for _, name := range a.Accepts(q) {
			assert.NotEqual(t, "_FRAG", name, "underscore-prefixed patterns must never reach the compiled automaton")
		}
	}
}

func TestBuildSection_rejectsDuplicatePatternNames(t *testing.T) {
	sec := Section{
		Name: "tokens",
		Patterns: []Pattern{
			{Name: "N", Source: "[0-9]+"},
			{Name: "N", Source: "[0-9]"},
		},
	}

	_, err := BuildSection(sec)
	assert.Error(t, err)
}

func TestLoad_manifestMergesSectionsInOrder(t *testing.T) {
	dir := t.TempDir()

	part1 := "format = \"1.0\"\ntype = \"lexicon\"\n\n[first]\nA = \"a\"\n"
	part2 := "format = \"1.0\"\ntype = \"lexicon\"\n\n[second]\nB = \"b\"\n"
	manifest := "format = \"1.0\"\ntype = \"manifest\"\n\nfiles = [\"part1.toml\", \"part2.toml\"]\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "part1.toml"), []byte(part1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part2.toml"), []byte(part2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0o644))

	lex, err := Load(filepath.Join(dir, "manifest.toml"))
	require.NoError(t, err)
	require.Len(t, lex.Sections, 2)
	assert.Equal(t, "first", lex.Sections[0].Name)
	assert.Equal(t, "second", lex.Sections[1].Name)
}

func TestLoad_circularManifestIsRejected(t *testing.T) {
	dir := t.TempDir()

	a := "format = \"1.0\"\ntype = \"manifest\"\n\nfiles = [\"b.toml\"]\n"
	b := "format = \"1.0\"\ntype = \"manifest\"\n\nfiles = [\"a.toml\"]\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toml"), []byte(a), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.toml"), []byte(b), 0o644))

	_, err := Load(filepath.Join(dir, "a.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrManifestCircularRef)
}

func TestScanFileInfo_readsHeaderBeforeFirstSection(t *testing.T) {
	info, err := ScanFileInfo([]byte(sampleLexicon))
	require.NoError(t, err)
	assert.Equal(t, "1.0", info.Format)
	assert.Equal(t, "lexicon", info.Type)
}
