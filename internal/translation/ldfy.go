package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/shloka/internal/globaltime"
	"horse.fit/shloka/internal/language"
)

const (
	// DefaultLDFYEndpoint is the provider's translate operation.
	DefaultLDFYEndpoint = "https://ldfy.cc/translation/language/translate"
	// DefaultLDFYEngineType selects the provider's Google-backed engine.
	DefaultLDFYEngineType = "2"
	// maxResponseBytes caps how much of a provider body is buffered.
	maxResponseBytes = 4 << 20
)

// LDFYOptions configures an LDFYProvider.
type LDFYOptions struct {
	APIKey     string
	Endpoint   string
	EngineType string
	SourceLang string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// LDFYProvider calls the ldfy.cc translation API.
type LDFYProvider struct {
	apiKey     string
	endpoint   string
	engineType string
	sourceLang string
	client     *http.Client
	logger     zerolog.Logger
}

// NewLDFYProvider builds a provider with the credential bound at construction.
// It fails with ErrAPIKeyNotConfigured when the key is blank.
func NewLDFYProvider(opts LDFYOptions) (*LDFYProvider, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyNotConfigured
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultLDFYEndpoint
	}
	engineType := strings.TrimSpace(opts.EngineType)
	if engineType == "" {
		engineType = DefaultLDFYEngineType
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &LDFYProvider{
		apiKey:     apiKey,
		endpoint:   endpoint,
		engineType: engineType,
		sourceLang: language.SourceOrDefault(opts.SourceLang),
		client:     client,
		logger:     opts.Logger.With().Str("provider", "ldfy").Logger(),
	}, nil
}

func (p *LDFYProvider) Name() string {
	return "ldfy"
}

// Translate sends one request. Transport failures come back as a KindTransport
// error; every HTTP answer, successful or not, comes back as a response.
func (p *LDFYProvider) Translate(ctx context.Context, req TranslateRequest) (*ProviderResponse, error) {
	if p == nil {
		return nil, ErrAPIKeyNotConfigured
	}

	sourceLang := strings.TrimSpace(req.SourceLang)
	if sourceLang == "" {
		sourceLang = p.sourceLang
	}

	body, err := json.Marshal(ldfyRequest{
		Text:       req.Text,
		SourceLang: sourceLang,
		TargetLang: req.TargetLang,
		Type:       p.engineType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	p.logger.Debug().
		Str("granularity", string(req.Granularity)).
		Str("source_lang", sourceLang).
		Str("target_lang", req.TargetLang).
		Int("text_len", len(req.Text)).
		Msg("ldfy request")

	started := globaltime.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, NewError(KindTransport, MsgServiceUnavailable, fmt.Errorf("send translation request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewError(KindTransport, MsgServiceUnavailable, fmt.Errorf("read translation response: %w", err))
	}

	out := &ProviderResponse{
		HTTPStatus:   resp.StatusCode,
		Body:         respBody,
		ProviderName: p.Name(),
		LatencyMs:    globaltime.Since(started).Milliseconds(),
	}
	decodeLDFYBody(out)

	p.logger.Debug().
		Int("http_status", out.HTTPStatus).
		Int("code", out.Code).
		Bool("decoded", out.Decoded).
		Int64("latency_ms", out.LatencyMs).
		Msg("ldfy response")

	return out, nil
}

type ldfyRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	Type       string `json:"type"`
}

type ldfyResponse struct {
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		TranslatedText string `json:"translatedText"`
	} `json:"data"`
}

func decodeLDFYBody(out *ProviderResponse) {
	var parsed ldfyResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return
	}
	if parsed.Code == nil {
		return
	}
	out.Decoded = true
	out.Code = *parsed.Code
	out.Msg = parsed.Msg
	if parsed.Data != nil {
		out.TranslatedText = parsed.Data.TranslatedText
	}
}
