package emit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/lexforge/internal/automaton"
)

// Gocode generates a standalone Go source file embedding a's transition and
// accept tables as plain data plus a closure-returning scan function, so the
// generated file can be dropped into any downstream Go program without ever
// importing this module - its own import block is limited to bufio, io, and
// sort. funcName names the generated entry point; pkg is its package clause.
func Gocode(a *automaton.Automaton, pkg, funcName string) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by lexforge. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("import (\n\t\"bufio\"\n\t\"io\"\n\t\"sort\"\n)\n\n")

	writeTransitionTable(&b, funcName, a)
	writeAcceptTable(&b, funcName, a)
	fmt.Fprintf(&b, "const %sErrorState = %d\n\n", funcName, a.ErrorState())
	writeNextFunc(&b, funcName)
	writeNoMatchError(&b, funcName)
	writeScanFunc(&b, funcName)

	return b.String(), nil
}

func writeTransitionTable(b *strings.Builder, funcName string, a *automaton.Automaton) {
	fmt.Fprintf(b, "type %sTransition struct {\n\tFirst, Last, To int\n}\n\n", funcName)

	fmt.Fprintf(b, "var %sTransitions = [][]%sTransition{\n", funcName, funcName)
	for q := 0; q < a.NumStates(); q++ {
		b.WriteString("\t{")
		for _, t := range a.Transitions(q) {
			fmt.Fprintf(b, "{%d, %d, %d}, ", t.First, t.Last, t.To)
		}
		b.WriteString("},\n")
	}
	b.WriteString("}\n\n")
}

func writeAcceptTable(b *strings.Builder, funcName string, a *automaton.Automaton) {
	fmt.Fprintf(b, "var %sAccepts = [][]string{\n", funcName)
	for q := 0; q < a.NumStates(); q++ {
		b.WriteString("\t{")
		for _, name := range a.Accepts(q) {
			fmt.Fprintf(b, "%s, ", strconv.Quote(name))
		}
		b.WriteString("},\n")
	}
	b.WriteString("}\n\n")
}

func writeNextFunc(b *strings.Builder, funcName string) {
	fmt.Fprintf(b, "func %sNext(state int, c rune) int {\n", funcName)
	fmt.Fprintf(b, "\tts := %sTransitions[state]\n", funcName)
	b.WriteString("\ti := sort.Search(len(ts), func(i int) bool { return ts[i].Last >= int(c) })\n")
	b.WriteString("\tif i < len(ts) && ts[i].First <= int(c) {\n\t\treturn ts[i].To\n\t}\n")
	fmt.Fprintf(b, "\treturn %sErrorState\n", funcName)
	b.WriteString("}\n\n")
}

// writeNoMatchError defines the generated file's own error type rather than
// relying on fmt.Errorf, so the file's imports stay limited to bufio/io/sort.
func writeNoMatchError(b *strings.Builder, funcName string) {
	fmt.Fprintf(b, "type %sNoMatchError struct {\n\tInput string\n}\n\n", funcName)
	fmt.Fprintf(b, "func (e *%sNoMatchError) Error() string {\n\treturn \"no token matches input starting with \" + e.Input\n}\n\n", funcName)
}

func writeScanFunc(b *strings.Builder, funcName string) {
	fmt.Fprintf(b, "// %s returns a closure that pulls tokens from r one at a time using the\n", funcName)
	b.WriteString("// embedded table. It returns io.EOF once r is exhausted with no partial\n")
	b.WriteString("// match buffered, and a *" + funcName + "NoMatchError if the table dies on\n")
	b.WriteString("// buffered input that no pattern ever accepted.\n")
	fmt.Fprintf(b, "func %s(r io.Reader) func() (token string, lexeme string, err error) {\n", funcName)
	b.WriteString("\tbr := bufio.NewReader(r)\n")
	b.WriteString("\tvar buffer []rune\n")
	b.WriteString("\toffset := 0\n")
	b.WriteString("\tstate := 0\n")
	b.WriteString("\tvar lastAccept []string\n")
	b.WriteString("\tlastAcceptLen := 0\n")
	b.WriteString("\tsourceDone := false\n\n")
	b.WriteString("\treturn func() (string, string, error) {\n")
	b.WriteString("\t\tfor {\n")
	fmt.Fprintf(b, "\t\t\tif names := %sAccepts[state]; len(names) > 0 {\n", funcName)
	b.WriteString("\t\t\t\tlastAccept = names\n")
	b.WriteString("\t\t\t\tlastAcceptLen = offset\n")
	b.WriteString("\t\t\t}\n\n")
	b.WriteString("\t\t\tif offset >= len(buffer) && !sourceDone {\n")
	b.WriteString("\t\t\t\tc, _, rerr := br.ReadRune()\n")
	b.WriteString("\t\t\t\tif rerr == nil {\n")
	b.WriteString("\t\t\t\t\tbuffer = append(buffer, c)\n")
	b.WriteString("\t\t\t\t} else {\n")
	b.WriteString("\t\t\t\t\tsourceDone = true\n")
	b.WriteString("\t\t\t\t}\n")
	b.WriteString("\t\t\t}\n\n")
	fmt.Fprintf(b, "\t\t\tnextState := %sErrorState\n", funcName)
	b.WriteString("\t\t\tif offset < len(buffer) {\n")
	fmt.Fprintf(b, "\t\t\t\tnextState = %sNext(state, buffer[offset])\n", funcName)
	b.WriteString("\t\t\t\toffset++\n")
	b.WriteString("\t\t\t}\n")
	b.WriteString("\t\t\tstate = nextState\n\n")
	fmt.Fprintf(b, "\t\t\tif state != %sErrorState {\n", funcName)
	b.WriteString("\t\t\t\tcontinue\n")
	b.WriteString("\t\t\t}\n\n")
	b.WriteString("\t\t\tif lastAccept != nil {\n")
	b.WriteString("\t\t\t\tname := lastAccept[0]\n")
	b.WriteString("\t\t\t\ttext := string(buffer[:lastAcceptLen])\n\n")
	b.WriteString("\t\t\t\tbuffer = append([]rune(nil), buffer[lastAcceptLen:]...)\n")
	b.WriteString("\t\t\t\toffset = 0\n")
	b.WriteString("\t\t\t\tstate = 0\n")
	b.WriteString("\t\t\t\tlastAccept = nil\n")
	b.WriteString("\t\t\t\tlastAcceptLen = 0\n\n")
	b.WriteString("\t\t\t\treturn name, text, nil\n")
	b.WriteString("\t\t\t}\n\n")
	b.WriteString("\t\t\tif len(buffer) > 0 {\n")
	fmt.Fprintf(b, "\t\t\t\treturn \"\", \"\", &%sNoMatchError{Input: string(buffer)}\n", funcName)
	b.WriteString("\t\t\t}\n\n")
	b.WriteString("\t\t\treturn \"\", \"\", io.EOF\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t}\n")
	b.WriteString("}\n")
}
