package automaton

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rezi"
)

// Transition is one maximal code-point range a state transitions on.
type Transition struct {
	First, Last int
	To          int
}

// Automaton is the tuple (transitions, accepts, error_state) produced by
// Build. Transitions within a state are sorted by First and pairwise
// disjoint; accepts[errorState] is always empty; state 0 is always the
// starting vector.
type Automaton struct {
	transitions [][]Transition
	accepts     [][]string
	errorState  int
}

// NumStates returns the number of states in a.
func (a *Automaton) NumStates() int {
	return len(a.transitions)
}

// Transitions returns the sorted, disjoint transition ranges out of state.
func (a *Automaton) Transitions(state int) []Transition {
	return a.transitions[state]
}

// Accepts returns the ordered list of token names for which state is a
// valid accepting suffix - empty if state is not accepting. The first name
// in the list wins longest-match ties.
func (a *Automaton) Accepts(state int) []string {
	return a.accepts[state]
}

// ErrorState returns the single designated non-accepting sink state.
func (a *Automaton) ErrorState() int {
	return a.errorState
}

// Next returns the state reached from state on code point c, via binary
// search over the sorted transition ranges. Any code point not covered by
// state's transitions yields ErrorState.
func (a *Automaton) Next(state int, c int) int {
	ts := a.transitions[state]
	i := sort.Search(len(ts), func(i int) bool { return ts[i].Last >= c })
	if i < len(ts) && ts[i].First <= c {
		return ts[i].To
	}
	return a.errorState
}

// wireTransition and wireAutomaton are the exported mirrors rezi encodes -
// Automaton's own fields are unexported to keep its invariants (sorted,
// disjoint transitions; a valid error_state) from being violated by direct
// field mutation after construction.
type wireTransition struct {
	First, Last, To int
}

type wireAutomaton struct {
	Transitions [][]wireTransition
	Accepts     [][]string
	ErrorState  int
}

// MarshalBinary serializes a into rezi's compact binary format, so a
// compiled Automaton can be stored (e.g. by lfserver) and reloaded without
// re-running Build.
func (a *Automaton) MarshalBinary() ([]byte, error) {
	w := wireAutomaton{
		Transitions: make([][]wireTransition, len(a.transitions)),
		Accepts:     a.accepts,
		ErrorState:  a.errorState,
	}
	for i, ts := range a.transitions {
		wts := make([]wireTransition, len(ts))
		for j, t := range ts {
			wts[j] = wireTransition{First: t.First, Last: t.Last, To: t.To}
		}
		w.Transitions[i] = wts
	}
	return rezi.EncBinary(w), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary into a.
func (a *Automaton) UnmarshalBinary(data []byte) error {
	var w wireAutomaton
	n, err := rezi.DecBinary(data, &w)
	if err != nil {
		return fmt.Errorf("rezi decode: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("rezi decode: consumed %d/%d bytes", n, len(data))
	}

	transitions := make([][]Transition, len(w.Transitions))
	for i, wts := range w.Transitions {
		ts := make([]Transition, len(wts))
		for j, wt := range wts {
			ts[j] = Transition{First: wt.First, Last: wt.Last, To: wt.To}
		}
		transitions[i] = ts
	}

	a.transitions = transitions
	a.accepts = w.Accepts
	a.errorState = w.ErrorState
	return nil
}
