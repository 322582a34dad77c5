package automaton

import "sort"

// Build runs the worklist construction described by the algebra in package
// regex, producing an Automaton whose state 0 is v0.
//
// The all-Null vector (every element replaced by regex.Null) is seeded into
// the state table up front, guaranteeing a well-defined error_state even
// though it may not otherwise be reachable from v0 by the time the
// worklist drains - derivatives of an element outside its own classes union
// cannot occur since classes partition the alphabet, but Null arises
// naturally from constructs like d_c(SymbolSet(∅)), so the dead state must
// be reachable by construction, not merely by derivation.
func Build(v0 Vector) *Automaton {
	states := map[string]int{}
	var vectors []Vector
	var transitions [][]Transition
	var stack []Vector

	addState := func(v Vector) int {
		if idx, ok := states[v.Key()]; ok {
			return idx
		}
		idx := len(vectors)
		states[v.Key()] = idx
		vectors = append(vectors, v)
		transitions = append(transitions, nil)
		stack = append(stack, v)
		return idx
	}

	addState(v0)
	nullVec := v0.NullVector()
	addState(nullVec)

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		q := states[v.Key()]

		for _, class := range v.Classes() {
			ranges := class.Ranges()
			if len(ranges) == 0 {
				continue
			}
			rep := ranges[0].First
			vp := v.Derivative(rep)
			qp := addState(vp)

			for _, r := range ranges {
				transitions[q] = append(transitions[q], Transition{First: r.First, Last: r.Last, To: qp})
			}
		}

		sort.Slice(transitions[q], func(i, j int) bool {
			return transitions[q][i].First < transitions[q][j].First
		})
	}

	accepts := make([][]string, len(vectors))
	for i, v := range vectors {
		accepts[i] = v.NullableNames()
	}

	return &Automaton{
		transitions: transitions,
		accepts:     accepts,
		errorState:  states[nullVec.Key()],
	}
}
