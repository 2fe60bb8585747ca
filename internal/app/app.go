package app

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "serve":
		return runServe(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "words":
		return runWords(args[1:])
	case "languages":
		return runLanguages(args[1:])
	case "health":
		return runHealth(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(stderr, "shloka CLI")
	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  shloka <command> [flags]")
	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "Commands:")
	fmt.Fprintln(stderr, "  serve      Start the translation proxy")
	fmt.Fprintln(stderr, "  translate  Translate a Sanskrit passage through a running proxy")
	fmt.Fprintln(stderr, "  words      Look up every word of a passage the way hover popups do")
	fmt.Fprintln(stderr, "  languages  List supported target languages")
	fmt.Fprintln(stderr, "  health     Check a running proxy")
	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "Use \"shloka <command> -h\" for command-specific flags.")
}
