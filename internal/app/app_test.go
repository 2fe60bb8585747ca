package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/shloka/internal/config"
	"horse.fit/shloka/internal/httpapi"
	"horse.fit/shloka/internal/translation"
)

type capturedOutput struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// captureOutput swaps the package writers. Tests using it must not run in parallel.
func captureOutput(t *testing.T, input string) capturedOutput {
	t.Helper()

	out := capturedOutput{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	prevStdout, prevStderr, prevStdin := stdout, stderr, stdin
	stdout, stderr, stdin = out.stdout, out.stderr, strings.NewReader(input)
	t.Cleanup(func() {
		stdout, stderr, stdin = prevStdout, prevStderr, prevStdin
	})

	t.Setenv("SHLOKA_ENV_FILE", "")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	return out
}

type fakeUpstream struct {
	calls        atomic.Int32
	translations map[string]string
}

// newFakeUpstream serves the provider API: known texts translate, anything
// else answers with a 500 body code.
func newFakeUpstream(t *testing.T, translations map[string]string) (*httptest.Server, *fakeUpstream) {
	t.Helper()

	fake := &fakeUpstream{translations: translations}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.calls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		translated, ok := fake.translations[body["text"]]
		if !ok {
			_, _ = io.WriteString(w, `{"code":500,"msg":"unknown text"}`)
			return
		}
		payload, _ := json.Marshal(map[string]any{
			"code": 200,
			"msg":  "success",
			"data": map[string]string{"translatedText": translated},
		})
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server, fake
}

// startProxy runs the real proxy and points the client commands at it. An
// empty upstreamURL starts the proxy without a provider.
func startProxy(t *testing.T, upstreamURL string) {
	t.Helper()

	var provider translation.Provider
	if upstreamURL != "" {
		ldfy, err := translation.NewLDFYProvider(translation.LDFYOptions{
			APIKey:   "test-key",
			Endpoint: upstreamURL,
			Logger:   zerolog.Nop(),
		})
		if err != nil {
			t.Fatalf("new provider: %v", err)
		}
		provider = ldfy
	}

	proxy := httptest.NewServer(httpapi.NewServer(provider, zerolog.Nop(), httpapi.Options{}).Handler())
	t.Cleanup(proxy.Close)
	t.Setenv("SHLOKA_SERVER_URL", proxy.URL)
}

func TestRunUsage(t *testing.T) {
	out := captureOutput(t, "")

	if code := Run(nil); code != 2 {
		t.Fatalf("expected exit 2 without args, got %d", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("expected exit 0 for help, got %d", code)
	}
	if code := Run([]string{"ingest"}); code != 2 {
		t.Fatalf("expected exit 2 for unknown command, got %d", code)
	}
	if !strings.Contains(out.stderr.String(), "unknown command: ingest") {
		t.Fatalf("expected unknown command message, got %q", out.stderr.String())
	}
}

func TestTranslateCommand(t *testing.T) {
	out := captureOutput(t, "")
	upstream, fake := newFakeUpstream(t, map[string]string{"namaste world": "hello world"})
	startProxy(t, upstream.URL)

	if code := Run([]string{"translate", "--lang", "en", "namaste", "world"}); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, out.stderr.String())
	}
	if got := strings.TrimSpace(out.stdout.String()); got != "hello world" {
		t.Fatalf("unexpected output: %q", got)
	}
	if fake.calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", fake.calls.Load())
	}
}

func TestTranslateCommand_ReadsStdin(t *testing.T) {
	out := captureOutput(t, "namaste world")
	upstream, _ := newFakeUpstream(t, map[string]string{"namaste world": "hello world"})
	startProxy(t, upstream.URL)

	if code := Run([]string{"translate", "--format", "json"}); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, out.stderr.String())
	}

	var envelope map[string]string
	if err := json.Unmarshal(out.stdout.Bytes(), &envelope); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if envelope["status"] != "ok" || envelope["translatedText"] != "hello world" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestTranslateCommand_BlankTextIsRejectedLocally(t *testing.T) {
	out := captureOutput(t, "")
	upstream, fake := newFakeUpstream(t, nil)
	startProxy(t, upstream.URL)

	if code := Run([]string{"translate", "   "}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(out.stderr.String(), "Please enter text to translate") {
		t.Fatalf("unexpected stderr: %q", out.stderr.String())
	}
	if fake.calls.Load() != 0 {
		t.Fatalf("expected no upstream calls, got %d", fake.calls.Load())
	}
}

func TestTranslateCommand_MissingKey(t *testing.T) {
	out := captureOutput(t, "")
	startProxy(t, "")

	if code := Run([]string{"translate", "namaste"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out.stderr.String(), "API key not configured") {
		t.Fatalf("unexpected stderr: %q", out.stderr.String())
	}
}

func TestTranslateCommand_RejectsUnknownLanguage(t *testing.T) {
	out := captureOutput(t, "")

	if code := Run([]string{"translate", "--lang", "fr", "namaste"}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(out.stderr.String(), "en, hi, ta, te, ml") {
		t.Fatalf("expected supported codes in message, got %q", out.stderr.String())
	}
}

func TestTranslateCommand_ProxyUnreachable(t *testing.T) {
	out := captureOutput(t, "")
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	if code := Run([]string{"translate", "--server", closed.URL, "namaste"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out.stderr.String(), "Translation service unavailable") {
		t.Fatalf("unexpected stderr: %q", out.stderr.String())
	}
}

func TestWordsCommand(t *testing.T) {
	out := captureOutput(t, "")
	upstream, fake := newFakeUpstream(t, map[string]string{"satyam": "truth", "jayate": "triumphs"})
	startProxy(t, upstream.URL)

	code := Run([]string{"words", "--format", "json", "satyam", "eva", "jayate", "satyam"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, out.stderr.String())
	}

	var rows []wordRow
	if err := json.Unmarshal(out.stdout.Bytes(), &rows); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := []wordRow{
		{Index: 0, Word: "satyam", State: "loaded", Translation: "truth"},
		{Index: 1, Word: "eva", State: "failed"},
		{Index: 2, Word: "jayate", State: "loaded", Translation: "triumphs"},
		{Index: 3, Word: "satyam", State: "loaded", Translation: "truth"},
	}
	if len(rows) != len(want) {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d: got %+v want %+v", i, rows[i], want[i])
		}
	}
	if got := fake.calls.Load(); got != 4 {
		t.Fatalf("expected one upstream call per word instance, got %d", got)
	}
}

func TestWordsCommand_TableLeavesFailedWordsBlank(t *testing.T) {
	out := captureOutput(t, "")
	upstream, _ := newFakeUpstream(t, map[string]string{"satyam": "truth"})
	startProxy(t, upstream.URL)

	if code := Run([]string{"words", "satyam", "eva"}); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, out.stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(out.stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected table: %q", out.stdout.String())
	}
	if !strings.Contains(lines[1], "truth") {
		t.Fatalf("expected translation in row: %q", lines[1])
	}
	if strings.TrimSpace(strings.TrimPrefix(lines[2], "1")) != "eva" {
		t.Fatalf("expected failed word to have a blank translation: %q", lines[2])
	}
}

func TestLanguagesCommand(t *testing.T) {
	out := captureOutput(t, "")

	if code := Run([]string{"languages", "--format", "json"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var list languageList
	if err := json.Unmarshal(out.stdout.Bytes(), &list); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if list.Source.Code != "sa" || len(list.Targets) != 5 || list.Targets[0].Code != "en" {
		t.Fatalf("unexpected language list: %+v", list)
	}
}

func TestLanguagesCommand_Remote(t *testing.T) {
	out := captureOutput(t, "")
	startProxy(t, "")

	if code := Run([]string{"languages", "--remote"}); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, out.stderr.String())
	}
	output := out.stdout.String()
	if !strings.Contains(output, "source: sa") || !strings.Contains(output, "Malayalam") {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestHealthCommand(t *testing.T) {
	out := captureOutput(t, "")
	upstream, _ := newFakeUpstream(t, nil)
	startProxy(t, upstream.URL)

	if code := Run([]string{"health", "--require-provider"}); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, out.stderr.String())
	}
	if !strings.Contains(out.stdout.String(), "provider_configured=true") {
		t.Fatalf("unexpected output: %q", out.stdout.String())
	}
}

func TestHealthCommand_RequireProvider(t *testing.T) {
	out := captureOutput(t, "")
	startProxy(t, "")

	if code := Run([]string{"health", "--require-provider"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out.stderr.String(), "LDFY_API_KEY") {
		t.Fatalf("unexpected stderr: %q", out.stderr.String())
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		LDFYEndpoint:   "https://ldfy.cc/translation/language/translate",
		LDFYEngineType: "2",
		SourceLang:     "sa",
	}
	provider, err := newProvider(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new provider without key: %v", err)
	}
	if provider != nil {
		t.Fatalf("expected a nil provider without a key, got %#v", provider)
	}

	cfg.LDFYAPIKey = "secret"
	provider, err = newProvider(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new provider with key: %v", err)
	}
	if provider == nil || provider.Name() == "" {
		t.Fatalf("expected a named provider, got %#v", provider)
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	got, err := parseOutputFormat(" JSON ", outputFormatTable, outputFormatTable, outputFormatJSON)
	if err != nil || got != outputFormatJSON {
		t.Fatalf("unexpected format: %q err=%v", got, err)
	}
	got, err = parseOutputFormat("", outputFormatTable, outputFormatTable, outputFormatJSON)
	if err != nil || got != outputFormatTable {
		t.Fatalf("unexpected default format: %q err=%v", got, err)
	}
	if _, err := parseOutputFormat("yaml", outputFormatText, outputFormatText, outputFormatJSON); err == nil {
		t.Fatalf("expected yaml to be rejected")
	}
}

func TestParseTargetLang(t *testing.T) {
	t.Parallel()

	cases := map[string]string{"": "en", "HI": "hi", "ta-IN": "ta", "ml": "ml"}
	for raw, want := range cases {
		got, err := parseTargetLang(raw)
		if err != nil || got != want {
			t.Fatalf("parseTargetLang(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := parseTargetLang("sa"); err == nil {
		t.Fatalf("expected the source language to be rejected as a target")
	}
	for _, raw := range []string{"not a tag", "e1"} {
		if _, err := parseTargetLang(raw); err == nil {
			t.Fatalf("expected malformed tag %q to be rejected", raw)
		}
	}
}

func TestTruncateForTable(t *testing.T) {
	t.Parallel()

	if got := truncateForTable("धर्मक्षेत्रे कुरुक्षेत्रे", 8); got != "धर्मक..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateForTable(" short ", 10); got != "short" {
		t.Fatalf("unexpected short value: %q", got)
	}
}
