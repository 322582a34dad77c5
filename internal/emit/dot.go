// Package emit renders a compiled automaton.Automaton into one of several
// output targets: a Graphviz digraph, generated Go scanner source, a
// tabular debug dump, or a direct interactive interpreter.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lexforge/internal/automaton"
	"github.com/dekarrin/lexforge/internal/util"
)

// Dot renders a into a Graphviz "dot" digraph. Accepting states are drawn
// as doublecircle nodes labeled with their winning token name; the error
// state is omitted entirely since every state implicitly falls to it on
// any uncovered code point, and drawing it would make every diagram a
// nearly-complete graph.
func Dot(a *automaton.Automaton, name string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %s {\n", dotID(name))
	b.WriteString("\trankdir=LR;\n")

	errState := a.ErrorState()

	for q := 0; q < a.NumStates(); q++ {
		if q == errState {
			continue
		}
		if accepts := a.Accepts(q); len(accepts) > 0 {
			fmt.Fprintf(&b, "\tq%d [shape=doublecircle, label=%q];\n", q, fmt.Sprintf("%d: %s", q, accepts[0]))
		} else {
			fmt.Fprintf(&b, "\tq%d [shape=circle, label=%q];\n", q, fmt.Sprintf("%d", q))
		}
	}

	b.WriteString("\t__start__ [shape=point];\n")
	b.WriteString("\t__start__ -> q0;\n")

	for q := 0; q < a.NumStates(); q++ {
		if q == errState {
			continue
		}
		for _, tr := range a.Transitions(q) {
			if tr.To == errState {
				continue
			}
			fmt.Fprintf(&b, "\tq%d -> q%d [label=%q];\n", q, tr.To, rangeLabel(tr.First, tr.Last))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func dotID(name string) string {
	if name == "" {
		return "lexicon"
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func rangeLabel(first, last int) string {
	if first == last {
		return codePointLabel(first)
	}
	return codePointLabel(first) + "-" + codePointLabel(last)
}

func codePointLabel(c int) string {
	if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
		return string(rune(c))
	}
	return fmt.Sprintf("U+%04X", c)
}

// sortedAccepts returns the accepting states of a in ascending order; Debug
// uses it to count accepting states for its footer.
func sortedAccepts(a *automaton.Automaton) []int {
	accepting := util.NewKeySet[int]()
	for q := 0; q < a.NumStates(); q++ {
		if len(a.Accepts(q)) > 0 {
			accepting.Add(q)
		}
	}
	out := accepting.Elements()
	sort.Ints(out)
	return out
}
