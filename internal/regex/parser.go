package regex

import (
	"strconv"
	"strings"

	"github.com/dekarrin/lexforge/internal/intset"
	"github.com/dekarrin/lexforge/internal/lferrs"
	"github.com/dekarrin/lexforge/internal/ucd"
)

// metacharacters outside a character class.
const metachars = `\.[|&!()?*+{`

// metacharacters inside a character class.
const classMetachars = `\-]`

// Parse compiles source, the concrete syntax described in the grammar
// below, into a Term. The parser is stateless between calls to Parse; each
// call owns its own cursor over source.
//
//	expression = or
//	or         = and, { "|", and }
//	and        = compl, { "&", compl }
//	compl      = [ "!" ], concat
//	concat     = { quant }
//	quant      = element, [ "?" | "*" | "+" | count ]
//	count      = "{", dec+, [ ",", [ dec+ ] ], "}"
//	element    = "(", or, ")" | "." | class | escape | LITERAL
//	class      = "[", [ "^" ], [ "]" | "-" ], { range }, [ "-" ], "]"
//	range      = member, [ "-", member ]
//	member     = escape | CLASS_LITERAL
//	escape     = "\" ( short | "p" prop | "P" prop
//	             | octal | hex | unicode | CHAR )
func Parse(source string) (*Term, error) {
	p := &parser{runes: []rune(source)}
	t, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, lferrs.Syntaxf("extraneous trailing input at position %d", p.pos)
	}
	return t, nil
}

type parser struct {
	runes []rune
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.runes)
}

func (p *parser) peek() (rune, bool) {
	if p.eof() {
		return 0, false
	}
	return p.runes[p.pos], true
}

func (p *parser) peekAt(offset int) (rune, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.runes) {
		return 0, false
	}
	return p.runes[i], true
}

func (p *parser) read() (rune, bool) {
	r, ok := p.peek()
	if ok {
		p.pos++
	}
	return r, ok
}

func (p *parser) readIf(want rune) bool {
	if r, ok := p.peek(); ok && r == want {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(want rune) error {
	r, ok := p.read()
	if !ok {
		return lferrs.Syntaxf("unexpected end of input, expected %q", want)
	}
	if r != want {
		return lferrs.Syntaxf("unexpected %q, expected %q", r, want)
	}
	return nil
}

// readWhile consumes and returns a run of runes satisfying pred.
func (p *parser) readWhile(pred func(rune) bool) string {
	var sb strings.Builder
	for {
		r, ok := p.peek()
		if !ok || !pred(r) {
			break
		}
		sb.WriteRune(r)
		p.pos++
	}
	return sb.String()
}

func isDecDigit(r rune) bool { return r >= '0' && r <= '9' }
func isOctDigit(r rune) bool { return r >= '0' && r <= '7' }
func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (p *parser) parseOr() (*Term, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []*Term{first}
	for p.readIf('|') {
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	return Or(terms...), nil
}

func (p *parser) parseAnd() (*Term, error) {
	first, err := p.parseCompl()
	if err != nil {
		return nil, err
	}
	terms := []*Term{first}
	for p.readIf('&') {
		next, err := p.parseCompl()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	return And(terms...), nil
}

func (p *parser) parseCompl() (*Term, error) {
	if p.readIf('!') {
		inner, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return Complement(inner), nil
	}
	return p.parseConcat()
}

func (p *parser) parseConcat() (*Term, error) {
	var terms []*Term
	for {
		r, ok := p.peek()
		if !ok || r == '|' || r == '&' || r == ')' {
			break
		}
		t, err := p.parseQuant()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return ConcatAll(terms), nil
}

func (p *parser) parseQuant() (*Term, error) {
	elem, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	switch r, ok := p.peek(); {
	case ok && r == '?':
		p.pos++
		return Or(elem, Epsilon), nil
	case ok && r == '*':
		p.pos++
		return Star(elem), nil
	case ok && r == '+':
		p.pos++
		return Concat(elem, Star(elem)), nil
	case ok && r == '{':
		return p.parseCount(elem)
	default:
		return elem, nil
	}
}

func (p *parser) parseCount(elem *Term) (*Term, error) {
	p.pos++ // consume '{'

	mDigits := p.readWhile(isDecDigit)
	if mDigits == "" {
		return nil, lferrs.Syntax("expected a count after '{'")
	}
	m, err := strconv.Atoi(mDigits)
	if err != nil {
		return nil, lferrs.Syntaxf("invalid count %q", mDigits)
	}

	hasComma := p.readIf(',')
	hasUpper := false
	n := m
	if hasComma {
		nDigits := p.readWhile(isDecDigit)
		if nDigits != "" {
			hasUpper = true
			n, err = strconv.Atoi(nDigits)
			if err != nil {
				return nil, lferrs.Syntaxf("invalid count %q", nDigits)
			}
		}
	}

	if err := p.expect('}'); err != nil {
		return nil, err
	}

	if hasComma && hasUpper && n < m {
		return nil, lferrs.Syntaxf("count {%d,%d} has upper bound below lower bound", m, n)
	}

	mandatory := make([]*Term, m)
	for i := range mandatory {
		mandatory[i] = elem
	}

	switch {
	case !hasComma:
		return ConcatAll(mandatory), nil
	case !hasUpper:
		return Concat(ConcatAll(mandatory), Star(elem)), nil
	default:
		optional := make([]*Term, n-m)
		for i := range optional {
			optional[i] = Or(elem, Epsilon)
		}
		return ConcatAll(append(mandatory, optional...)), nil
	}
}

func (p *parser) parseElement() (*Term, error) {
	r, ok := p.peek()
	if !ok {
		return nil, lferrs.Syntax("unexpected end of input")
	}

	switch r {
	case '(':
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return inner, nil
	case '.':
		p.pos++
		return Sigma, nil
	case '[':
		return p.parseClass()
	case '\\':
		p.pos++
		res, err := p.parseEscape()
		if err != nil {
			return nil, err
		}
		return Sym(res), nil
	default:
		if strings.ContainsRune(metachars, r) {
			return nil, lferrs.Syntaxf("unexpected metacharacter %q", r)
		}
		p.pos++
		return Sym(intset.New(int(r))), nil
	}
}

// parseClass parses "[" ["^"] ["]" | "-"] {range} ["-"] "]".
func (p *parser) parseClass() (*Term, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}

	negate := p.readIf('^')

	var elems []intset.Elem

	// a leading ']' or '-' is a literal member, not the class terminator or
	// a range separator.
	if r, ok := p.peek(); ok && (r == ']' || r == '-') {
		p.pos++
		elems = append(elems, int(r))
	}

	for {
		r, ok := p.peek()
		if !ok {
			return nil, lferrs.Syntax("unterminated character class")
		}
		if r == ']' {
			break
		}
		// a '-' immediately followed by the class terminator is the
		// optional trailing literal dash, not a range separator or an
		// error: "-" is otherwise a class metacharacter.
		if r == '-' {
			if next, ok2 := p.peekAt(1); ok2 && next == ']' {
				p.pos++
				elems = append(elems, int('-'))
				continue
			}
		}
		re, err := p.parseClassRange()
		if err != nil {
			return nil, err
		}
		elems = append(elems, re...)
	}

	if err := p.expect(']'); err != nil {
		return nil, err
	}

	s := intset.New(elems...)
	if negate {
		s = Codespace.Difference(s)
	}
	return Sym(s), nil
}

// parseClassRange parses one "range = member, [ '-', member ]" production.
func (p *parser) parseClassRange() ([]intset.Elem, error) {
	first, firstIsSingle, err := p.parseClassMember()
	if err != nil {
		return nil, err
	}
	if !firstIsSingle {
		// a category/class escape (\d, \p{L}, ...) contributes its whole
		// set and can never itself be a range endpoint.
		return setToElems(first), nil
	}

	firstCP := first.Ranges()[0].First

	// '-' only introduces a range if it isn't immediately the class
	// terminator (handles the trailing "['-", "]"] literal-dash case).
	if r, ok := p.peek(); ok && r == '-' {
		if next, ok2 := p.peekAt(1); ok2 && next != ']' {
			p.pos++ // consume '-'
			second, secondIsSingle, err := p.parseClassMember()
			if err != nil {
				return nil, err
			}
			if !secondIsSingle {
				return nil, lferrs.Syntax("range endpoint must be a single code point")
			}
			secondCP := second.Ranges()[0].First
			if secondCP < firstCP {
				return nil, lferrs.Syntaxf("invalid range %d-%d", firstCP, secondCP)
			}
			return []intset.Elem{intset.Range{First: firstCP, Last: secondCP}}, nil
		}
	}

	return []intset.Elem{firstCP}, nil
}

// parseClassMember parses "member = escape | CLASS_LITERAL" and reports
// whether the result is a single code point (required for it to serve as a
// range endpoint) alongside the full set it denotes.
func (p *parser) parseClassMember() (intset.Set, bool, error) {
	r, ok := p.peek()
	if !ok {
		return intset.Set{}, false, lferrs.Syntax("unterminated character class")
	}
	if r == '\\' {
		p.pos++
		set, err := p.parseEscape()
		if err != nil {
			return intset.Set{}, false, err
		}
		return set, isSingleCodePoint(set), nil
	}
	if strings.ContainsRune(classMetachars, r) {
		return intset.Set{}, false, lferrs.Syntaxf("unexpected metacharacter %q in character class", r)
	}
	p.pos++
	return intset.New(int(r)), true, nil
}

func isSingleCodePoint(s intset.Set) bool {
	rs := s.Ranges()
	return len(rs) == 1 && rs[0].First == rs[0].Last
}

func setToElems(s intset.Set) []intset.Elem {
	rs := s.Ranges()
	elems := make([]intset.Elem, len(rs))
	for i, r := range rs {
		elems[i] = r
	}
	return elems
}

// parseEscape parses "escape = '\' ( short | 'p' prop | 'P' prop | octal |
// hex | unicode | CHAR )", the backslash itself already consumed.
func (p *parser) parseEscape() (intset.Set, error) {
	r, ok := p.read()
	if !ok {
		return intset.Set{}, lferrs.Syntax("unexpected end of input after '\\'")
	}

	switch r {
	case 'a':
		return single(0x07), nil
	case 'b':
		return single(0x08), nil
	case 'e':
		return single(0x1B), nil
	case 'f':
		return single(0x0C), nil
	case 'n':
		return single(0x0A), nil
	case 'r':
		return single(0x0D), nil
	case 't':
		return single(0x09), nil
	case 'd':
		return ucd.Category("Nd")
	case 'D':
		return complementSet(ucd.Category("Nd"))
	case 's':
		return unionSets(ucdMust("Z"), ucd.Horizontal, ucd.Vertical), nil
	case 'S':
		return complementSet(unionSets(ucdMust("Z"), ucd.Horizontal, ucd.Vertical), nil)
	case 'h':
		return ucd.Horizontal, nil
	case 'H':
		return Codespace.Difference(ucd.Horizontal), nil
	case 'v':
		return ucd.Vertical, nil
	case 'V':
		return Codespace.Difference(ucd.Vertical), nil
	case 'w':
		return unionSets(ucdMust("L"), ucdMust("N"), ucd.Underscore), nil
	case 'W':
		return complementSet(unionSets(ucdMust("L"), ucdMust("N"), ucd.Underscore), nil)
	case 'p':
		name, err := p.parseProp()
		if err != nil {
			return intset.Set{}, err
		}
		s, err := ucd.Category(name)
		if err != nil {
			return intset.Set{}, lferrs.Syntax(err.Error())
		}
		return s, nil
	case 'P':
		name, err := p.parseProp()
		if err != nil {
			return intset.Set{}, err
		}
		s, err := ucd.Category(name)
		if err != nil {
			return intset.Set{}, lferrs.Syntax(err.Error())
		}
		return Codespace.Difference(s), nil
	case 'o':
		return p.parseOctalBraced()
	case 'x':
		return p.parseHex()
	case 'u':
		return p.parseFixedHex(4)
	case 'U':
		return p.parseFixedHex(8)
	default:
		if isOctDigit(r) {
			return p.parseOctalShort(r)
		}
		return single(int(r)), nil
	}
}

func single(cp int) intset.Set {
	return intset.New(cp)
}

func unionSets(sets ...intset.Set) intset.Set {
	if len(sets) == 0 {
		return intset.New()
	}
	return sets[0].Union(sets[1:]...)
}

// complementSet is a small adapter so the \D \S \W escapes above, which
// resolve a category lookup that can fail, can compose with
// Codespace.Difference without every call site repeating the error check.
func complementSet(s intset.Set, err error) (intset.Set, error) {
	return Codespace.Difference(s), err
}

func ucdMust(name string) intset.Set {
	s, err := ucd.Category(name)
	if err != nil {
		// these names (L, N, Z) are guaranteed present by ucd's own
		// umbrella-construction; a miss here is a bug in ucd, not in
		// caller input.
		panic(err)
	}
	return s
}

func (p *parser) parseProp() (string, error) {
	if p.readIf('{') {
		name := p.readWhile(func(r rune) bool { return r != '}' })
		if err := p.expect('}'); err != nil {
			return "", lferrs.Syntax("unterminated property name")
		}
		return name, nil
	}
	r, ok := p.read()
	if !ok {
		return "", lferrs.Syntax("expected a property name after \\p or \\P")
	}
	return string(r), nil
}

func (p *parser) parseOctalShort(first rune) (intset.Set, error) {
	digits := string(first)
	for len(digits) < 3 {
		r, ok := p.peek()
		if !ok || !isOctDigit(r) {
			break
		}
		digits += string(r)
		p.pos++
	}
	return codePointFromDigits(digits, 8)
}

func (p *parser) parseOctalBraced() (intset.Set, error) {
	if err := p.expect('{'); err != nil {
		return intset.Set{}, err
	}
	digits := p.readWhile(isOctDigit)
	if digits == "" {
		return intset.Set{}, lferrs.Syntax("expected octal digits in \\o{...}")
	}
	if err := p.expect('}'); err != nil {
		return intset.Set{}, err
	}
	return codePointFromDigits(digits, 8)
}

func (p *parser) parseHex() (intset.Set, error) {
	if p.readIf('{') {
		digits := p.readWhile(isHexDigit)
		if digits == "" {
			return intset.Set{}, lferrs.Syntax("expected hex digits in \\x{...}")
		}
		if err := p.expect('}'); err != nil {
			return intset.Set{}, err
		}
		return codePointFromDigits(digits, 16)
	}
	var digits string
	for i := 0; i < 2; i++ {
		r, ok := p.peek()
		if !ok || !isHexDigit(r) {
			return intset.Set{}, lferrs.Syntax("expected two hex digits after \\x")
		}
		digits += string(r)
		p.pos++
	}
	return codePointFromDigits(digits, 16)
}

func (p *parser) parseFixedHex(n int) (intset.Set, error) {
	var digits string
	for i := 0; i < n; i++ {
		r, ok := p.peek()
		if !ok || !isHexDigit(r) {
			return intset.Set{}, lferrs.Syntaxf("expected %d hex digits", n)
		}
		digits += string(r)
		p.pos++
	}
	return codePointFromDigits(digits, 16)
}

func codePointFromDigits(digits string, base int) (intset.Set, error) {
	cp, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return intset.Set{}, lferrs.Syntaxf("invalid numeric escape %q", digits)
	}
	if cp < 0 || cp > ucd.MaxCodePoint {
		return intset.Set{}, lferrs.Syntaxf("code point %d out of range", cp)
	}
	return single(int(cp)), nil
}
