package regex

import "github.com/dekarrin/lexforge/internal/intset"

// nu is the symbolic nullability function: it returns Epsilon if e matches
// the empty string, Null otherwise. Nullable is the boolean form most
// callers want.
func nu(e *Term) *Term {
	switch e.kind {
	case KindEpsilon:
		return Epsilon
	case KindSymbolSet:
		return Null
	case KindStar:
		return Epsilon
	case KindConcat:
		return And(nu(e.a), nu(e.b))
	case KindOr:
		nus := make([]*Term, len(e.kids))
		for i, k := range e.kids {
			nus[i] = nu(k)
		}
		return Or(nus...)
	case KindAnd:
		nus := make([]*Term, len(e.kids))
		for i, k := range e.kids {
			nus[i] = nu(k)
		}
		return And(nus...)
	case KindComplement:
		if nu(e.a).kind == KindEpsilon {
			return Null
		}
		return Epsilon
	default:
		panic("regex: nu: unhandled kind")
	}
}

// Nullable reports whether e's language contains the empty string.
func (t *Term) Nullable() bool {
	return nu(t).kind == KindEpsilon
}

// Derivative returns d_c(e): the term whose language is { w : c·w ∈ L(e) }.
func Derivative(e *Term, c int) *Term {
	switch e.kind {
	case KindEpsilon:
		return Null
	case KindSymbolSet:
		if e.set.Contains(c) {
			return Epsilon
		}
		return Null
	case KindConcat:
		return Or(
			Concat(Derivative(e.a, c), e.b),
			Concat(nu(e.a), Derivative(e.b, c)),
		)
	case KindStar:
		return Concat(Derivative(e.a, c), e)
	case KindOr:
		ds := make([]*Term, len(e.kids))
		for i, k := range e.kids {
			ds[i] = Derivative(k, c)
		}
		return Or(ds...)
	case KindAnd:
		ds := make([]*Term, len(e.kids))
		for i, k := range e.kids {
			ds[i] = Derivative(k, c)
		}
		return And(ds...)
	case KindComplement:
		return Complement(Derivative(e.a, c))
	default:
		panic("regex: Derivative: unhandled kind")
	}
}

// Classes returns the derivative classes of e: a partition of codespace
// into the maximal sets of code points that all yield the same derivative.
// Every member is non-empty, and every code point in codespace belongs to
// exactly one.
func Classes(e *Term) []intset.Set {
	switch e.kind {
	case KindEpsilon:
		return []intset.Set{Codespace}
	case KindSymbolSet:
		return dropEmpty(e.set, Codespace.Difference(e.set))
	case KindStar, KindComplement:
		return Classes(e.a)
	case KindOr, KindAnd:
		acc := Classes(e.kids[0])
		for _, k := range e.kids[1:] {
			acc = ProductIntersections(acc, Classes(k))
		}
		return acc
	case KindConcat:
		if !e.a.Nullable() {
			return Classes(e.a)
		}
		return ProductIntersections(Classes(e.a), Classes(e.b))
	default:
		panic("regex: Classes: unhandled kind")
	}
}

func dropEmpty(sets ...intset.Set) []intset.Set {
	out := make([]intset.Set, 0, len(sets))
	for _, s := range sets {
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

// ProductIntersections computes { a ∩ b : a∈A, b∈B, a∩b ≠ ∅ }, the join
// used to combine derivative classes across sub-expressions and across
// vector elements.
func ProductIntersections(a, b []intset.Set) []intset.Set {
	out := make([]intset.Set, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			i := x.Intersection(y)
			if !i.Empty() {
				out = append(out, i)
			}
		}
	}
	return out
}
