package lexicon

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/lexforge/internal/automaton"
	"github.com/dekarrin/lexforge/internal/regex"
	"github.com/dekarrin/lexforge/internal/util"
)

// Pattern is one name = regex_source pair from a lexicon section, after
// interpolation but before parsing.
type Pattern struct {
	Name   string
	Source string
}

// Section is one [name] block of a lexicon document: an ordered set of
// named regex patterns that together define one automaton.
type Section struct {
	Name     string
	Patterns []Pattern
}

// Lexicon is every section loaded from a lexicon file or manifest, in the
// order they were declared.
type Lexicon struct {
	Sections []Section
}

// Section returns the named section, or false if no such section was
// loaded.
func (l *Lexicon) Section(name string) (Section, bool) {
	for _, s := range l.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Parse decodes a single lexicon document (not a manifest) from data,
// without touching the filesystem - the entry point for callers that
// already have lexicon source in hand, such as an HTTP request body.
func Parse(data []byte) (*Lexicon, error) {
	return parseLexiconSource(data)
}

// Build parses and compiles the named section into an Automaton. Pattern
// names starting with "_" are skipped, per the driver contract: they never
// reach the core. Token order is preserved and is the priority order the
// resulting automaton's accepts lists use.
func (l *Lexicon) Build(sectionName string) (*automaton.Automaton, error) {
	sec, ok := l.Section(sectionName)
	if !ok {
		names := make([]string, len(l.Sections))
		for i, s := range l.Sections {
			names[i] = s.Name
		}
		return nil, fmt.Errorf("lexicon: no such section %q (have %s)", sectionName, util.MakeTextList(names))
	}
	return BuildSection(sec)
}

// BuildSection parses and compiles sec directly, without a Lexicon lookup.
func BuildSection(sec Section) (*automaton.Automaton, error) {
	var names []string
	var terms []*regex.Term
	seen := util.NewStringSet()
	for _, p := range sec.Patterns {
		if strings.HasPrefix(p.Name, "_") {
			continue
		}
		if seen.Has(p.Name) {
			return nil, fmt.Errorf("lexicon: section %s: pattern %q is defined more than once", sec.Name, p.Name)
		}
		seen.Add(p.Name)

		term, err := regex.Parse(p.Source)
		if err != nil {
			return nil, fmt.Errorf("lexicon: section %s, pattern %s: %w", sec.Name, p.Name, err)
		}
		names = append(names, p.Name)
		terms = append(terms, term)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("lexicon: section %s has no patterns after dropping _-prefixed names", sec.Name)
	}
	return automaton.Build(automaton.New(names, terms)), nil
}

// parseLexiconSource decodes a lexicon document's [section] tables,
// recovering declaration order from the TOML decoder's key metadata (plain
// map iteration order is unspecified in Go, but priority order is
// semantically load-bearing here), then resolves <name> interpolation
// within each section before returning the raw pattern sources.
func parseLexiconSource(data []byte) (*Lexicon, error) {
	// The top-level table mixes the FileInfo scalars (format, type) with
	// section tables, so it can't be decoded straight into a uniform map
	// type; decode generically and sort out which root keys are tables.
	var raw map[string]interface{}
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}

	var sectionOrder []string
	nameOrder := map[string][]string{}
	seenSection := map[string]bool{}

	for _, key := range meta.Keys() {
		switch len(key) {
		case 1:
			name := key[0]
			if name == "format" || name == "type" {
				continue
			}
			if !seenSection[name] {
				seenSection[name] = true
				sectionOrder = append(sectionOrder, name)
			}
		case 2:
			sectionName, optName := key[0], key[1]
			nameOrder[sectionName] = append(nameOrder[sectionName], optName)
		}
	}

	lex := &Lexicon{}
	for _, sectionName := range sectionOrder {
		rawBody, _ := raw[sectionName].(map[string]interface{})
		body := make(map[string]string, len(rawBody))
		for k, v := range rawBody {
			if s, ok := v.(string); ok {
				body[k] = s
			}
		}

		var patterns []Pattern
		for _, optName := range nameOrder[sectionName] {
			resolved, err := resolveValue(body, optName, 0)
			if err != nil {
				return nil, fmt.Errorf("lexicon: section %s: %w", sectionName, err)
			}
			patterns = append(patterns, Pattern{Name: optName, Source: resolved})
		}
		lex.Sections = append(lex.Sections, Section{Name: sectionName, Patterns: patterns})
	}

	return lex, nil
}
