package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"horse.fit/shloka/internal/hover"
	"horse.fit/shloka/internal/logging"
)

type wordRow struct {
	Index       int    `json:"index"`
	Word        string `json:"word"`
	State       string `json:"state"`
	Translation string `json:"translation,omitempty"`
}

// runWords hovers every word of a passage through the hover cache, so each
// occurrence is looked up once and failures stay silent.
func runWords(args []string) int {
	fs := flag.NewFlagSet("words", flag.ContinueOnError)
	fs.SetOutput(stderr)

	client := addClientFlags(fs, 2*time.Minute)
	lang := fs.String("lang", "", "Target language: en, hi, ta, te or ml (default en)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

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
	outputFormat, err := parseOutputFormat(*format, outputFormatTable, outputFormatTable, outputFormatJSON)
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
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(stderr, "Please enter text to translate")
		return 2
	}

	cfg, proxy, err := client.connect()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger, err := logging.NewWithWriter(cfg.Environment, cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ids := hover.Tokenize(text)
	cache, err := hover.New(proxy.Words(), hover.Options{
		SourceLang:     cfg.SourceLang,
		TargetLang:     targetLang,
		RequestTimeout: cfg.HoverRequestTimeout,
		MaxEntries:     max(cfg.HoverMaxEntries, len(ids)),
		CancelOnLeave:  cfg.HoverCancelOnLeave,
		Logger:         logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build hover cache: %v\n", err)
		return 1
	}
	defer cache.Close()

	ctx, cancel := client.commandContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		cache.Close()
	}()

	cache.Render(text)
	for _, id := range ids {
		cache.PointerEnter(id)
	}
	cache.Wait()

	rows := make([]wordRow, 0, len(ids))
	for _, id := range ids {
		row := wordRow{Index: id.Index, Word: id.Word, State: hover.Idle.String()}
		if entry, ok := cache.Entry(id); ok {
			row.State = entry.State.String()
			row.Translation = entry.Translation
		}
		rows = append(rows, row)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(rows); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, []string{
			strconv.Itoa(row.Index),
			row.Word,
			truncateForTable(row.Translation, 60),
		})
	}
	if err := writeTable([]string{"#", "WORD", "TRANSLATION"}, tableRows); err != nil {
		fmt.Fprintf(stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
