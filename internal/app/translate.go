package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"horse.fit/shloka/internal/proxyclient"
)

var stdin io.Reader = os.Stdin

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	client := addClientFlags(fs, 45*time.Second)
	lang := fs.String("lang", "", "Target language: en, hi, ta, te or ml (default en)")
	format := fs.String("format", outputFormatText, "Output format: text or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	targetLang, err := parseTargetLang(*lang)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatText, outputFormatText, outputFormatJSON)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid format: %v\n", err)
		return 2
	}

	text := readTextArgs(fs)
	if fs.NArg() == 0 {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read text from stdin: %v\n", err)
			return 1
		}
		text = string(raw)
	}

	_, proxy, err := client.connect()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := client.commandContext()
	defer cancel()

	envelope, err := proxy.TranslateText(ctx, text, targetLang)
	if err != nil {
		if errors.Is(err, proxyclient.ErrEmptyText) {
			fmt.Fprintln(stderr, proxyclient.ErrEmptyText.Message)
			return 2
		}
		fmt.Fprintf(stderr, "Translate failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(envelope); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		if !envelope.OK() {
			return 1
		}
		return 0
	}

	if !envelope.OK() {
		fmt.Fprintf(stderr, "Translation error: %s\n", envelope.Message)
		return 1
	}
	fmt.Fprintln(stdout, envelope.TranslatedText)
	return 0
}
