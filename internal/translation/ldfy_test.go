package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func newTestProvider(t *testing.T, endpoint string) *LDFYProvider {
	t.Helper()

	provider, err := NewLDFYProvider(LDFYOptions{
		APIKey:   "test-key",
		Endpoint: endpoint,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return provider
}

func TestNewLDFYProviderRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewLDFYProvider(LDFYOptions{APIKey: "   ", Logger: zerolog.Nop()})
	if !errors.Is(err, ErrAPIKeyNotConfigured) {
		t.Fatalf("expected ErrAPIKeyNotConfigured, got %v", err)
	}
}

func TestLDFYTranslate_SendsCredentialAndFields(t *testing.T) {
	t.Parallel()

	var got map[string]string
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"msg":"success","data":{"translatedText":"hello world"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	resp, err := provider.Translate(context.Background(), TranslateRequest{
		Text:        "namaste world",
		TargetLang:  "en",
		Granularity: GranularityPassage,
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	if auth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", auth)
	}
	if got["text"] != "namaste world" || got["targetLang"] != "en" {
		t.Fatalf("unexpected request body: %v", got)
	}
	if got["sourceLang"] != "sa" {
		t.Fatalf("expected default source language sa, got %q", got["sourceLang"])
	}
	if got["type"] != "2" {
		t.Fatalf("expected engine type 2, got %q", got["type"])
	}

	if !resp.Decoded || resp.Code != 200 || resp.TranslatedText != "hello world" {
		t.Fatalf("unexpected decoded response: %+v", resp)
	}
	if resp.ProviderName != "ldfy" {
		t.Fatalf("unexpected provider name: %q", resp.ProviderName)
	}
}

func TestLDFYTranslate_WordUsesSameEngine(t *testing.T) {
	t.Parallel()

	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"code":200,"data":{"translatedText":"duty"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	_, err := provider.Translate(context.Background(), TranslateRequest{
		Text:        "dharma",
		SourceLang:  "sa",
		TargetLang:  "hi",
		Granularity: GranularityWord,
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got["type"] != "2" || got["text"] != "dharma" || got["targetLang"] != "hi" {
		t.Fatalf("unexpected request body: %v", got)
	}
}

func TestLDFYTranslate_NonSuccessStatusIsNotAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	resp, err := provider.Translate(context.Background(), TranslateRequest{Text: "x", TargetLang: "en"})
	if err != nil {
		t.Fatalf("did not expect error for HTTP status, got %v", err)
	}
	if resp.HTTPStatus != http.StatusBadGateway || resp.TransportOK() {
		t.Fatalf("unexpected transport status: %d", resp.HTTPStatus)
	}
	if resp.Decoded {
		t.Fatalf("did not expect non-JSON body to decode")
	}
	if string(resp.Body) != "upstream exploded" {
		t.Fatalf("expected raw body to be kept, got %q", string(resp.Body))
	}
}

func TestLDFYTranslate_TransportFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	endpoint := server.URL
	server.Close()

	provider := newTestProvider(t, endpoint)
	_, err := provider.Translate(context.Background(), TranslateRequest{Text: "dharma", TargetLang: "en"})
	if err == nil {
		t.Fatalf("expected transport error")
	}

	var classified *Error
	if !errors.As(err, &classified) || classified.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("did not expect closed server to receive calls")
	}
}

func TestLDFYTranslate_HonorsContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":200}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := newTestProvider(t, server.URL)
	_, err := provider.Translate(ctx, TranslateRequest{Text: "dharma", TargetLang: "en"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
