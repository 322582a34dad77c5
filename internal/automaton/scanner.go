package automaton

import (
	"fmt"
	"io"

	"github.com/dekarrin/lexforge/internal/lferrs"
)

// Token is one (name, matched text) pair produced by a Scanner.
type Token struct {
	Name string
	Text string
}

// Scanner performs longest-match, priority-tie-broken tokenization over an
// Automaton and a lazily-pulled sequence of atoms of type A. source yields
// the next atom and an ok flag that is false once the underlying sequence
// is exhausted; toSymbol converts an atom to the code point the Automaton's
// transitions are keyed on; pack renders a run of atoms into the matched
// text for a Token.
//
// Scanner is a pull-based iterator: call Next repeatedly until it returns
// io.EOF.
type Scanner[A any] struct {
	automaton *Automaton
	source    func() (A, bool)
	toSymbol  func(A) int
	pack      func([]A) string

	buffer        []A
	offset        int
	state         int
	lastAccept    []string
	lastAcceptLen int
	sourceDone    bool
}

// NewScanner returns a Scanner over automaton, pulling atoms from source.
func NewScanner[A any](automaton *Automaton, source func() (A, bool), toSymbol func(A) int, pack func([]A) string) *Scanner[A] {
	return &Scanner[A]{automaton: automaton, source: source, toSymbol: toSymbol, pack: pack}
}

// Next advances the scanner and returns the next token. It returns io.EOF
// once the source is exhausted and no partial match remains buffered, and
// an *lferrs.Error of kind KindNoMatch if the automaton dies with buffered
// input that no pattern ever accepted.
func (s *Scanner[A]) Next() (Token, error) {
	for {
		if names := s.automaton.Accepts(s.state); len(names) > 0 {
			s.lastAccept = names
			s.lastAcceptLen = s.offset
		}

		if s.offset >= len(s.buffer) && !s.sourceDone {
			atom, ok := s.source()
			if ok {
				s.buffer = append(s.buffer, atom)
			} else {
				s.sourceDone = true
			}
		}

		nextState := s.automaton.ErrorState()
		if s.offset < len(s.buffer) {
			atom := s.buffer[s.offset]
			nextState = s.automaton.Next(s.state, s.toSymbol(atom))
			s.offset++
		}
		s.state = nextState

		if s.state != s.automaton.ErrorState() {
			continue
		}

		if s.lastAccept != nil {
			name := s.lastAccept[0]
			text := s.pack(s.buffer[:s.lastAcceptLen])

			s.buffer = append([]A(nil), s.buffer[s.lastAcceptLen:]...)
			s.offset = 0
			s.state = 0
			s.lastAccept = nil
			s.lastAcceptLen = 0

			return Token{Name: name, Text: text}, nil
		}

		if len(s.buffer) > 0 {
			return Token{}, lferrs.NoMatch(fmt.Sprintf("no token matches input starting with %q", s.pack(s.buffer)))
		}

		return Token{}, io.EOF
	}
}
