package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/lexforge/internal/intset"
)

// matches drives a term through repeated derivatives - the operational
// definition of "does this term's language contain s" that the DFA builder
// itself relies on.
func matches(term *Term, s string) bool {
	cur := term
	for _, r := range s {
		cur = Derivative(cur, int(r))
	}
	return cur.Nullable()
}

func TestNullable_concretePatterns(t *testing.T) {
	a := Sym(intset.New(int('a')))
	b := Sym(intset.New(int('b')))

	assert.True(t, Epsilon.Nullable())
	assert.False(t, a.Nullable())
	assert.True(t, Star(a).Nullable())
	assert.True(t, Or(a, Epsilon).Nullable())
	assert.False(t, And(a, Epsilon).Nullable())
	assert.False(t, Complement(a).Nullable(), "complement of a single-symbol set is the set of every other single symbol, which does not match the empty string")
	assert.False(t, Complement(Epsilon).Nullable())
	assert.True(t, Concat(Star(a), Star(b)).Nullable())
	assert.False(t, Concat(a, b).Nullable())
}

func TestDerivative_matchesReferenceStrings(t *testing.T) {
	a := Sym(intset.New(int('a')))
	b := Sym(intset.New(int('b')))
	c := Sym(intset.New(int('c')))

	aPlus := Concat(a, Star(a))
	assert.True(t, matches(aPlus, "a"))
	assert.True(t, matches(aPlus, "aaaa"))
	assert.False(t, matches(aPlus, ""))
	assert.False(t, matches(aPlus, "ab"))

	abOrBa := Or(Concat(a, b), Concat(b, a))
	assert.True(t, matches(abOrBa, "ab"))
	assert.True(t, matches(abOrBa, "ba"))
	assert.False(t, matches(abOrBa, "aa"))

	andPattern := And(Star(Or(a, b)), Star(Or(b, c)))
	assert.True(t, matches(andPattern, "bbb"))
	assert.True(t, matches(andPattern, ""))
	assert.False(t, matches(andPattern, "abb"), "a is not in [bc]*")
	assert.False(t, matches(andPattern, "c"), "c is not in [ab]*")

	notA := Complement(a)
	assert.False(t, matches(notA, ""))
	assert.True(t, matches(notA, "b"))
	assert.False(t, matches(notA, "a"))
}

func TestClasses_partitionCodespace(t *testing.T) {
	a := Sym(intset.New(int('a')))
	b := Sym(intset.New(int('b')))
	term := Or(Concat(a, Star(b)), Complement(a))

	classes := Classes(term)
	assert.NotEmpty(t, classes)

	total := 0
	for i, c := range classes {
		assert.False(t, c.Empty(), "class %d must be non-empty", i)
		total += c.Cardinality()
		for j, d := range classes {
			if i == j {
				continue
			}
			assert.True(t, c.IsDisjoint(d), "classes %d and %d must be disjoint", i, j)
		}
	}
	assert.Equal(t, Codespace.Cardinality(), total, "classes must partition the whole codespace")
}

func TestClasses_shareDerivative(t *testing.T) {
	a := Sym(intset.New(int('a')))
	b := Sym(intset.New(int('b')))
	term := Concat(Or(a, b), Star(a))

	for _, class := range Classes(term) {
		rs := class.Ranges()
		if len(rs) == 0 {
			continue
		}
		rep := rs[0].First
		want := Derivative(term, rep)
		// sample a handful of other members of the class and confirm they
		// all yield the same derivative as the representative.
		for _, r := range rs {
			for _, c := range []int{r.First, r.Last} {
				got := Derivative(term, c)
				assert.True(t, got.Equal(want), "class member %d diverges from representative %d", c, rep)
			}
		}
	}
}
