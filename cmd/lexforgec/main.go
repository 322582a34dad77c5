/*
Lexforgec compiles a lexicon file into one of several output targets.

It reads in a lexicon document (or a manifest listing several to merge),
compiles the named section to an automaton, and writes the result to stdout
in the chosen format.

Usage:

	lexforgec [flags] SECTION

The flags are:

	-v, --version
		Give the current version of lexforge and then exit.

	-l, --lexicon FILE
		Use the provided lexicon or manifest file. Defaults to the file
		"lexicon.toml" in the current working directory.

	-t, --target FORMAT
		The output target: one of "dot", "gocode", "debug", or "exec".
		Defaults to "debug".

	-o, --output FILE
		Write output to FILE instead of stdout. Ignored for the "exec"
		target, which is always interactive.

	--package NAME
		Package name to use for the "gocode" target's generated file.
		Defaults to "tokens".

	--func NAME
		Function name to use for the "gocode" target's generated builder.
		Defaults to "BuildLexer".
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/lexforge/internal/emit"
	"github.com/dekarrin/lexforge/internal/lexicon"
	"github.com/dekarrin/lexforge/internal/util"
	"github.com/dekarrin/lexforge/internal/version"
)

var validTargets = util.NewStringSet(map[string]bool{
	"dot": true, "gocode": true, "debug": true, "exec": true, "": true,
})

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad flags or arguments.
	ExitUsageError

	// ExitCompileError indicates the lexicon failed to load or compile.
	ExitCompileError

	// ExitEmitError indicates the chosen target failed to render.
	ExitEmitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	lexiconFile = pflag.StringP("lexicon", "l", "lexicon.toml", "The lexicon or manifest file to compile")
	target      = pflag.StringP("target", "t", "debug", `Output target: "dot", "gocode", "debug", or "exec"`)
	outputFile  = pflag.StringP("output", "o", "", "Write output to this file instead of stdout")
	pkgName     = pflag.String("package", "tokens", `Package name for the "gocode" target`)
	funcName    = pflag.String("func", "BuildLexer", `Function name for the "gocode" target`)
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: exactly one SECTION argument is required")
		returnCode = ExitUsageError
		return
	}
	section := pflag.Arg(0)

	if !validTargets.Has(*target) {
		fmt.Fprintf(os.Stderr, "ERROR: unknown target %q\n", *target)
		returnCode = ExitUsageError
		return
	}

	lex, err := lexicon.Load(*lexiconFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCompileError
		return
	}

	a, err := lex.Build(section)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCompileError
		return
	}

	if *target == "exec" {
		if err := emit.Exec(a, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitEmitError
		}
		return
	}

	var out string
	switch *target {
	case "dot":
		out = emit.Dot(a, section)
	case "gocode":
		out, err = emit.Gocode(a, *pkgName, *funcName)
	case "debug", "":
		out = emit.Debug(a, 0)
	default:
		err = fmt.Errorf("unknown target %q", *target)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitEmitError
		return
	}

	if *outputFile == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitEmitError
	}
}
