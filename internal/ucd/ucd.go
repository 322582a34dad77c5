// Package ucd resolves Unicode general category names to the IntegerSet of
// code points they cover, for use by the regex parser's \p{X}, \P{X}, and
// short-escape (\d, \s, \w, ...) productions.
package ucd

import (
	"fmt"
	"unicode"

	"golang.org/x/text/unicode/rangetable"

	"github.com/dekarrin/lexforge/internal/intset"
)

// MaxCodePoint is the highest valid Unicode code point, the upper bound of
// codespace.
const MaxCodePoint = 0x10FFFF

// Codespace is the IntegerSet containing every valid code point.
var Codespace = intset.New(intset.Range{First: 0, Last: MaxCodePoint})

// Horizontal is the horizontal-whitespace set used by the \h/\H escapes.
var Horizontal = intset.New(
	0x09, 0x20, 0xA0, 0x1680, 0x180E,
	intset.Range{First: 0x2000, Last: 0x200A},
	0x202F, 0x205F, 0x3000,
)

// Vertical is the vertical-whitespace set used by the \v/\V escapes.
var Vertical = intset.New(
	intset.Range{First: 0x0A, Last: 0x0D},
	0x85, 0x2028, 0x2029,
)

// Underscore is the single code point '_', the non-category component of \w.
var Underscore = intset.New(int('_'))

var category map[string]intset.Set

func init() {
	category = make(map[string]intset.Set, len(unicode.Categories))
	for name, rt := range unicode.Categories {
		category[name] = rangeTableToSet(rt)
	}

	// single-letter umbrella categories: the union of every two-letter
	// category sharing that initial letter (L -> Lu|Ll|Lt|Lm|Lo, etc).
	umbrellas := map[string][]string{}
	for name := range unicode.Categories {
		if len(name) != 2 {
			continue
		}
		first := name[:1]
		umbrellas[first] = append(umbrellas[first], name)
	}
	for letter, members := range umbrellas {
		if _, exists := category[letter]; exists {
			continue
		}
		tables := make([]*unicode.RangeTable, 0, len(members))
		for _, m := range members {
			tables = append(tables, unicode.Categories[m])
		}
		category[letter] = rangeTableToSet(rangetable.Merge(tables...))
	}

	// L& ("cased letter"): Lu | Ll | Lt specifically, not the full L
	// umbrella (which also includes Lm and Lo).
	category["L&"] = rangeTableToSet(rangetable.Merge(
		unicode.Categories["Lu"],
		unicode.Categories["Ll"],
		unicode.Categories["Lt"],
	))
}

// Category resolves a Unicode general category name - a two-letter
// abbreviation such as "Nd" or "Lu", a single-letter umbrella such as "L" or
// "N" (the union of every two-letter category sharing that first letter), or
// the special cased-letter alias "L&" - to the IntegerSet of code points it
// covers.
func Category(name string) (intset.Set, error) {
	s, ok := category[name]
	if !ok {
		return intset.Set{}, fmt.Errorf("unknown unicode property name %q", name)
	}
	return s, nil
}

// rangeTableToSet converts a *unicode.RangeTable into an intset.Set,
// expanding strided R16/R32 entries into individual code points and
// collapsing unstrided entries directly into ranges.
func rangeTableToSet(rt *unicode.RangeTable) intset.Set {
	var elems []intset.Elem
	for _, r16 := range rt.R16 {
		appendStrideRange(&elems, int(r16.Lo), int(r16.Hi), int(r16.Stride))
	}
	for _, r32 := range rt.R32 {
		appendStrideRange(&elems, int(r32.Lo), int(r32.Hi), int(r32.Stride))
	}
	return intset.New(elems...)
}

func appendStrideRange(elems *[]intset.Elem, lo, hi, stride int) {
	if stride == 1 {
		*elems = append(*elems, intset.Range{First: lo, Last: hi})
		return
	}
	for c := lo; c <= hi; c += stride {
		*elems = append(*elems, c)
	}
}
