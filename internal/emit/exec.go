package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dekarrin/lexforge/internal/automaton"
	"github.com/dekarrin/lexforge/internal/util"
)

// Exec runs a directly against interactive input, printing each token as
// it's recognized - the same (name, matched text) pairs the original
// scan-and-print target emits, one line per token. Line input is read with
// readline so history and basic editing work when connected to a TTY.
//
// Two meta-commands are recognized before a line is handed to the scanner:
// ":undo" removes the last line appended to the running transcript (but
// does not un-scan any tokens already printed), and ":quit" ends the
// session. The transcript itself is kept in an UndoableStringBuilder so
// ":undo" can roll back the last append without discarding everything
// before it.
func Exec(a *automaton.Automaton, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "lexforge> ",
	})
	if err != nil {
		return fmt.Errorf("emit: create readline session: %w", err)
	}
	defer rl.Close()

	var transcript util.UndoableStringBuilder

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return fmt.Errorf("emit: read line: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case ":quit":
			return nil
		case ":undo":
			transcript.Undo()
			continue
		case "":
			continue
		}

		transcript.WriteString(line + "\n")

		if err := scanLine(a, line, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// scanLine runs a over line's runes and prints each recognized token,
// matching the original target's "name repr(text)" output shape.
func scanLine(a *automaton.Automaton, line string, out io.Writer) error {
	runes := []rune(line)
	i := 0
	source := func() (rune, bool) {
		if i >= len(runes) {
			return 0, false
		}
		r := runes[i]
		i++
		return r, true
	}

	s := automaton.NewScanner(a, source, func(r rune) int { return int(r) }, func(rs []rune) string { return string(rs) })

	for {
		tok, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %q\n", tok.Name, tok.Text)
	}
}
