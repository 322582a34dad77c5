// Package regex implements a canonicalizing algebra of extended regular
// expressions over Unicode code points, Brzozowski derivatives and
// derivative classes against that algebra, and a recursive-descent parser
// for the concrete syntax.
//
// Terms are built exclusively through smart constructors (Sym, Concat,
// Star, Or, And, Complement) that normalize as they go: flattening
// associative chains, sorting and deduplicating commutative operands,
// fusing adjacent SymbolSets, and folding identity laws for Epsilon, Null,
// and Sigma. Terms that differ only by these rewrites compare Equal - this
// is what makes the derivative-based DFA construction in package automaton
// terminate. Terms that denote the same language for any other reason may
// still compare unequal.
package regex

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/lexforge/internal/ucd"

	"github.com/dekarrin/lexforge/internal/intset"
)

// Kind distinguishes the shapes a Term may take.
type Kind int

const (
	KindEpsilon Kind = iota
	KindSymbolSet
	KindConcat
	KindStar
	KindOr
	KindAnd
	KindComplement
)

// Codespace is the IntegerSet of every valid Unicode code point.
var Codespace = ucd.Codespace

// Term is an immutable, canonically-constructed regular expression. The
// zero Term is not valid; use Epsilon, Sym, or one of the other
// constructors.
type Term struct {
	kind Kind
	set  intset.Set // KindSymbolSet
	a, b *Term      // Concat: a=left, b=right. Star/Complement: a=operand.
	kids []*Term    // Or/And: flattened, sorted, deduplicated operands.
	text string      // canonical string form, computed once at construction.
}

// String renders t in a fully-parenthesized, unambiguous canonical form.
// Equal strings imply equal languages; the converse holds only for terms
// that the constructors' rewrites bring to the same form.
func (t *Term) String() string {
	return t.text
}

// Equal reports whether t and o denote the same canonical term (and
// therefore the same language, given they were built only through this
// package's constructors).
func (t *Term) Equal(o *Term) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.text == o.text
}

// Compare gives a total order over Terms, used to sort the operands of Or
// and And into a canonical order. It has no semantic meaning beyond
// stability.
func (t *Term) Compare(o *Term) int {
	return strings.Compare(t.text, o.text)
}

// Kind returns t's shape.
func (t *Term) Kind() Kind {
	return t.kind
}

// Set returns the code-point set of a KindSymbolSet term. It panics if t is
// not a SymbolSet.
func (t *Term) Set() intset.Set {
	if t.kind != KindSymbolSet {
		panic("regex: Set() called on non-SymbolSet term")
	}
	return t.set
}

// Operand returns the single child of a Star or Complement term.
func (t *Term) Operand() *Term {
	if t.kind != KindStar && t.kind != KindComplement {
		panic("regex: Operand() called on non-unary term")
	}
	return t.a
}

// Left and Right return the children of a Concat term.
func (t *Term) Left() *Term {
	if t.kind != KindConcat {
		panic("regex: Left() called on non-Concat term")
	}
	return t.a
}

func (t *Term) Right() *Term {
	if t.kind != KindConcat {
		panic("regex: Right() called on non-Concat term")
	}
	return t.b
}

// Operands returns the flattened, sorted, deduplicated children of an Or or
// And term.
func (t *Term) Operands() []*Term {
	if t.kind != KindOr && t.kind != KindAnd {
		panic("regex: Operands() called on non-variadic term")
	}
	return t.kids
}

var epsilonTerm = &Term{kind: KindEpsilon, text: "Epsilon()"}

// Epsilon is the term matching exactly the empty string.
var Epsilon = epsilonTerm

// Null is the unmatchable expression, SymbolSet(∅).
var Null = &Term{kind: KindSymbolSet, set: intset.New(), text: "SymbolSet()"}

// Sigma is the universal single-symbol expression, SymbolSet(codespace).
var Sigma = mustSym(Codespace)

func mustSym(s intset.Set) *Term {
	return &Term{kind: KindSymbolSet, set: s, text: symbolSetString(s)}
}

func symbolSetString(s intset.Set) string {
	var sb strings.Builder
	sb.WriteString("SymbolSet(")
	for i, r := range s.Ranges() {
		if i > 0 {
			sb.WriteString(", ")
		}
		if r.First == r.Last {
			sb.WriteString(itoa(r.First))
		} else {
			sb.WriteString(itoa(r.First))
			sb.WriteString("-")
			sb.WriteString(itoa(r.Last))
		}
	}
	sb.WriteString(")")
	return sb.String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// Sym returns the term matching exactly one code point drawn from s. Sym(∅)
// is Null; Sym(Codespace) is Sigma.
func Sym(s intset.Set) *Term {
	if s.Empty() {
		return Null
	}
	if s.Equal(Codespace) {
		return Sigma
	}
	return mustSym(s)
}

// isSigma reports whether t is exactly SymbolSet(codespace).
func isSigma(t *Term) bool {
	return t.kind == KindSymbolSet && t.set.Equal(Codespace)
}

// isNull reports whether t is exactly SymbolSet(∅).
func isNull(t *Term) bool {
	return t.kind == KindSymbolSet && t.set.Empty()
}

// Concat returns the right-associated concatenation of l and r. A Null
// operand collapses the whole expression to Null; an Epsilon operand is
// absorbed.
func Concat(l, r *Term) *Term {
	if isNull(l) || isNull(r) {
		return Null
	}
	if l.kind == KindEpsilon {
		return r
	}
	if r.kind == KindEpsilon {
		return l
	}
	if l.kind == KindConcat {
		// re-associate so Concat is always right-leaning:
		// (l.a · l.b) · r  =  l.a · (l.b · r)
		return Concat(l.a, Concat(l.b, r))
	}
	return &Term{
		kind: KindConcat,
		a:    l,
		b:    r,
		text: "Concatenation(" + l.text + ", " + r.text + ")",
	}
}

// ConcatAll right-associatively concatenates terms in order, returning
// Epsilon for an empty slice.
func ConcatAll(terms []*Term) *Term {
	acc := Epsilon
	for i := len(terms) - 1; i >= 0; i-- {
		acc = Concat(terms[i], acc)
	}
	return acc
}

// Star returns the Kleene closure of e. Star(Star(e)) = Star(e);
// Star(Epsilon) = Epsilon; Star(Null) = Epsilon.
func Star(e *Term) *Term {
	if e.kind == KindStar {
		return e
	}
	if e.kind == KindEpsilon || isNull(e) {
		return Epsilon
	}
	return &Term{kind: KindStar, a: e, text: "KleeneClosure(" + e.text + ")"}
}

// Complement returns the language complement of e within codespace.
// Complement(Complement(e)) = e; Complement(SymbolSet(S)) =
// SymbolSet(codespace - S).
func Complement(e *Term) *Term {
	if e.kind == KindComplement {
		return e.a
	}
	if e.kind == KindSymbolSet {
		return Sym(Codespace.Difference(e.set))
	}
	return &Term{kind: KindComplement, a: e, text: "Complement(" + e.text + ")"}
}

// Or returns the union of terms, flattened, sorted, deduplicated, with
// adjacent SymbolSets fused into one and Sigma absorbing the whole
// expression. An empty or all-Null input collapses to Null.
func Or(terms ...*Term) *Term {
	flat := flattenOperands(terms, KindOr)

	var symAcc intset.Set
	haveSym := false
	var others []*Term
	for _, t := range flat {
		if isSigma(t) {
			return Sigma
		}
		if t.kind == KindSymbolSet {
			if !haveSym {
				symAcc = t.set
				haveSym = true
			} else {
				symAcc = symAcc.Union(t.set)
			}
			continue
		}
		others = append(others, t)
	}

	operands := dedupSort(others)
	if haveSym {
		fused := Sym(symAcc)
		if isSigma(fused) {
			return Sigma
		}
		if !isNull(fused) {
			operands = insertSorted(operands, fused)
		}
	}

	switch len(operands) {
	case 0:
		return Null
	case 1:
		return operands[0]
	default:
		return &Term{kind: KindOr, kids: operands, text: joinKids("LogicalOr", operands)}
	}
}

// And returns the intersection of terms, flattened, sorted, deduplicated,
// with adjacent SymbolSets fused into one, Sigma dropped as the identity,
// and any Null operand collapsing the whole expression to Null. An empty
// input collapses to Sigma.
func And(terms ...*Term) *Term {
	flat := flattenOperands(terms, KindAnd)

	var symAcc intset.Set
	haveSym := false
	var others []*Term
	for _, t := range flat {
		if isNull(t) {
			return Null
		}
		if isSigma(t) {
			continue
		}
		if t.kind == KindSymbolSet {
			if !haveSym {
				symAcc = t.set
				haveSym = true
			} else {
				symAcc = symAcc.Intersection(t.set)
			}
			continue
		}
		others = append(others, t)
	}

	operands := dedupSort(others)
	if haveSym {
		fused := Sym(symAcc)
		if isNull(fused) {
			return Null
		}
		operands = insertSorted(operands, fused)
	}

	switch len(operands) {
	case 0:
		return Sigma
	case 1:
		return operands[0]
	default:
		return &Term{kind: KindAnd, kids: operands, text: joinKids("LogicalAnd", operands)}
	}
}

func flattenOperands(terms []*Term, kind Kind) []*Term {
	var flat []*Term
	for _, t := range terms {
		if t.kind == kind {
			flat = append(flat, t.kids...)
		} else {
			flat = append(flat, t)
		}
	}
	return flat
}

func dedupSort(terms []*Term) []*Term {
	seen := make(map[string]bool, len(terms))
	out := make([]*Term, 0, len(terms))
	for _, t := range terms {
		if seen[t.text] {
			continue
		}
		seen[t.text] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].text < out[j].text })
	return out
}

func insertSorted(sorted []*Term, t *Term) []*Term {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i].text >= t.text })
	out := make([]*Term, 0, len(sorted)+1)
	out = append(out, sorted[:i]...)
	out = append(out, t)
	out = append(out, sorted[i:]...)
	return out
}

func joinKids(name string, kids []*Term) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	for i, k := range kids {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k.text)
	}
	sb.WriteString(")")
	return sb.String()
}
