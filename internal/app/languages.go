package app

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"horse.fit/shloka/internal/language"
	"horse.fit/shloka/internal/proxyclient"
)

type languageList struct {
	Source  language.Option   `json:"source"`
	Targets []language.Option `json:"targets"`
}

// runLanguages prints the built-in catalog, or asks a running proxy when
// --remote is set.
func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(stderr)

	client := addClientFlags(fs, 10*time.Second)
	remote := fs.Bool("remote", false, "Fetch the list from a running proxy")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "languages does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable, outputFormatTable, outputFormatJSON)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid format: %v\n", err)
		return 2
	}

	list := languageList{Source: language.Source(), Targets: language.Targets()}
	if *remote {
		_, proxy, err := client.connect()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		ctx, cancel := client.commandContext()
		defer cancel()

		fetched, err := proxy.Languages(ctx)
		if err != nil {
			if proxyclient.IsTransport(err) {
				fmt.Fprintf(stderr, "Proxy unreachable: %v\n", err)
			} else {
				fmt.Fprintf(stderr, "Failed to list languages: %v\n", err)
			}
			return 1
		}
		list = languageList{Source: fetched.Source, Targets: fetched.Targets}
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(list); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(list.Targets))
	for _, target := range list.Targets {
		rows = append(rows, []string{target.Code, target.Label, target.Native})
	}
	fmt.Fprintf(stdout, "source: %s (%s)\n", list.Source.Code, list.Source.Label)
	if err := writeTable([]string{"CODE", "LANGUAGE", "NATIVE"}, rows); err != nil {
		fmt.Fprintf(stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
