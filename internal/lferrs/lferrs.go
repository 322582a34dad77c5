// Package lferrs defines the typed error kinds of the compiler: syntax errors
// from the regex parser, no-match errors from the scanner, and
// internal-invariant assertions that should be unreachable by construction.
// It also defines a value-error kind for code points outside codespace; the
// regex constructors do not check their input, and no lexforge function
// returns an error of that kind.
package lferrs

import (
	"errors"
	"fmt"
)

// Kind distinguishes the error categories callers may want to branch on via
// errors.As.
type Kind int

const (
	// KindSyntax is malformed regex source: unterminated class, bad range,
	// bad count, unknown property, numeric escape out of range, extraneous
	// trailing input.
	KindSyntax Kind = iota

	// KindValue is a Regex constructor receiving code points outside
	// codespace.
	KindValue

	// KindNoMatch is a scanner reaching a dead state with a non-empty
	// buffer and no remembered accept.
	KindNoMatch

	// KindInternalInvariant is a debug-only assertion failure - something
	// the algebra guarantees can't happen, happened anyway.
	KindInternalInvariant
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindValue:
		return "value error"
	case KindNoMatch:
		return "no match"
	case KindInternalInvariant:
		return "internal invariant violated"
	default:
		return "error"
	}
}

// Error is the typed error returned by every layer of lexforge's compiler.
// It carries both a technical message (for logs, for Error()) and a short
// summary suitable for surfacing to an end user or an HTTP client, and may
// wrap an underlying cause.
type Error struct {
	kind      Kind
	technical string
	summary   string
	wrapped   error
}

func (e *Error) Error() string {
	return e.technical
}

// Kind returns the error's category.
func (e *Error) Kind() Kind {
	return e.kind
}

// Summary returns the short, human-facing description of the error.
func (e *Error) Summary() string {
	if e.summary != "" {
		return e.summary
	}
	return e.technical
}

// Unwrap gives the error that this Error wraps, if any.
func (e *Error) Unwrap() error {
	return e.wrapped
}

func newError(kind Kind, summary, technical string, wrapped error) *Error {
	if technical == "" {
		technical = fmt.Sprintf("%s: %s", kind, summary)
	}
	return &Error{kind: kind, technical: technical, summary: summary, wrapped: wrapped}
}

// Syntax returns a new syntax error with the given human-facing summary.
func Syntax(summary string) error {
	return newError(KindSyntax, summary, "", nil)
}

// Syntaxf returns a new syntax error with a formatted summary.
func Syntaxf(format string, a ...interface{}) error {
	return Syntax(fmt.Sprintf(format, a...))
}

// Value returns a new value error with the given human-facing summary.
func Value(summary string) error {
	return newError(KindValue, summary, "", nil)
}

// Valuef returns a new value error with a formatted summary.
func Valuef(format string, a ...interface{}) error {
	return Value(fmt.Sprintf(format, a...))
}

// NoMatch returns a new no-match error with the given human-facing summary.
func NoMatch(summary string) error {
	return newError(KindNoMatch, summary, "", nil)
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed via errors.As semantics (callers typically use errors.As directly;
// this is a convenience for the common "is this a syntax error" check).
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.kind == kind
}

// AssertInvariant panics with a KindInternalInvariant error if cond is
// false, so a panic from it means the algebra itself has a bug, not that the
// caller supplied bad input. The regex package does not call it; its own
// unreachable branches (such as nu's default case) panic with a plain
// string.
func AssertInvariant(cond bool, format string, a ...interface{}) {
	if !cond {
		panic(newError(KindInternalInvariant, fmt.Sprintf(format, a...), "", nil))
	}
}
