package emit

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/lexforge/internal/automaton"
)

// Debug renders a tabular transition/accepts dump of a, in the style of
// the teacher's in-game debug listings: a header row, one row per state,
// wrapped to width.
func Debug(a *automaton.Automaton, width int) string {
	if width <= 0 {
		width = 80
	}

	data := [][]string{{"State", "Accepts", "Transitions"}}

	errState := a.ErrorState()
	for q := 0; q < a.NumStates(); q++ {
		label := fmt.Sprintf("%d", q)
		if q == errState {
			label += " (error)"
		}

		accepts := strings.Join(a.Accepts(q), ", ")
		if accepts == "" {
			accepts = "-"
		}

		var transParts []string
		for _, tr := range a.Transitions(q) {
			transParts = append(transParts, fmt.Sprintf("%s -> %d", rangeLabel(tr.First, tr.Last), tr.To))
		}
		transitions := strings.Join(transParts, "; ")
		if transitions == "" {
			transitions = "-"
		}

		data = append(data, []string{label, accepts, transitions})
	}

	footer := fmt.Sprintf("\n%d states, %d accepting, error state %d", a.NumStates(), len(sortedAccepts(a)), errState)

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit(footer).
		InsertTableOpts(0, data, width, tableOpts).
		String()
}
