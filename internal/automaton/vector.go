// Package automaton builds a priority-ordered, longest-match DFA from one
// or more named regular expressions via Brzozowski derivatives, and runs it
// over a stream of code points.
package automaton

import (
	"strings"

	"github.com/dekarrin/lexforge/internal/intset"
	"github.com/dekarrin/lexforge/internal/regex"
)

// Vector is an ordered sequence of (name, Term) pairs serving as a compound
// DFA state: one regex.Term per named pattern, all advanced in lockstep.
// Vector is immutable; its zero value is not valid, use New.
type Vector struct {
	names []string
	terms []*regex.Term
	key   string
}

// New builds a Vector from parallel names and terms slices. names and terms
// must be the same length; names determines priority order (earlier names
// win ties).
func New(names []string, terms []*regex.Term) Vector {
	namesCopy := append([]string(nil), names...)
	termsCopy := append([]*regex.Term(nil), terms...)
	return Vector{names: namesCopy, terms: termsCopy, key: vectorKey(namesCopy, termsCopy)}
}

func vectorKey(names []string, terms []*regex.Term) string {
	var sb strings.Builder
	for i, n := range names {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(n)
		sb.WriteString("=")
		sb.WriteString(terms[i].String())
	}
	return sb.String()
}

// Key returns the canonical string identity of v, used to deduplicate
// states during DFA construction - two Vectors with the same elementwise
// canonical terms produce the same Key.
func (v Vector) Key() string {
	return v.key
}

// Len returns the number of named patterns in v.
func (v Vector) Len() int {
	return len(v.names)
}

// Names returns the pattern names in declaration (priority) order.
func (v Vector) Names() []string {
	return append([]string(nil), v.names...)
}

// NullableNames returns the names, in vector (priority) order, whose term is
// currently nullable - the accept set for the DFA state v represents.
func (v Vector) NullableNames() []string {
	var out []string
	for i, t := range v.terms {
		if t.Nullable() {
			out = append(out, v.names[i])
		}
	}
	return out
}

// Derivative returns the vector obtained by taking d_c of every element.
func (v Vector) Derivative(c int) Vector {
	terms := make([]*regex.Term, len(v.terms))
	for i, t := range v.terms {
		terms[i] = regex.Derivative(t, c)
	}
	return New(v.names, terms)
}

// Classes returns the derivative classes of v: the iterated product-
// intersection of each element's classes, partitioning codespace into sets
// that yield an identical vector derivative.
func (v Vector) Classes() []intset.Set {
	if len(v.terms) == 0 {
		return []intset.Set{regex.Codespace}
	}
	acc := regex.Classes(v.terms[0])
	for _, t := range v.terms[1:] {
		acc = regex.ProductIntersections(acc, regex.Classes(t))
	}
	return acc
}

// NullVector returns the vector with the same names as v but every term
// replaced by regex.Null - the universal dead state used to seed a DFA's
// error_state.
func (v Vector) NullVector() Vector {
	terms := make([]*regex.Term, len(v.terms))
	for i := range terms {
		terms[i] = regex.Null
	}
	return New(v.names, terms)
}
