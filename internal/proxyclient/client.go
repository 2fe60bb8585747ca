// Package proxyclient calls the translation proxy and normalizes every answer
// into an Envelope.
package proxyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"horse.fit/shloka/internal/translation"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8090"
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 4 << 20
)

// ErrEmptyText is returned before any request when there is nothing to translate.
var ErrEmptyText = translation.NewError(translation.KindValidation, translation.MsgEmptyText, nil)

type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Envelope is the normalized result of a proxy call. TranslatedText is set
// on ok; ErrorKind and Message are set on error.
type Envelope struct {
	Status         Status                `json:"status"`
	TranslatedText string                `json:"translatedText,omitempty"`
	ErrorKind      translation.ErrorKind `json:"errorKind,omitempty"`
	Message        string                `json:"message,omitempty"`
}

func okEnvelope(text string) *Envelope {
	return &Envelope{Status: StatusOK, TranslatedText: text}
}

func errorEnvelope(err *translation.Error) *Envelope {
	return &Envelope{Status: StatusError, ErrorKind: err.Kind, Message: err.Message}
}

func (e *Envelope) OK() bool {
	return e != nil && e.Status == StatusOK
}

// Err converts an error envelope back into a classified error.
func (e *Envelope) Err() error {
	if e == nil {
		return translation.NewError(translation.KindUpstream, translation.MsgTranslationFailed, nil)
	}
	if e.OK() {
		return nil
	}
	return translation.NewError(e.ErrorKind, e.Message, nil)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("proxy base url must be http or https: %q", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("proxy base url must include a host: %q", raw)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, httpClient: httpClient}, nil
}

// TranslateText translates a full passage from the proxy's default source
// language. Transport failures are returned as errors; everything the proxy
// answers becomes an Envelope.
func (c *Client) TranslateText(ctx context.Context, text, targetLang string) (*Envelope, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return c.post(ctx, "/translate", map[string]string{
		"text":       text,
		"targetLang": targetLang,
	})
}

// TranslateWord looks up one word. An empty sourceLang lets the proxy pick
// its default.
func (c *Client) TranslateWord(ctx context.Context, word, sourceLang, targetLang string) (*Envelope, error) {
	if strings.TrimSpace(word) == "" {
		return nil, ErrEmptyText
	}
	body := map[string]string{
		"word":       word,
		"targetLang": targetLang,
	}
	if trimmed := strings.TrimSpace(sourceLang); trimmed != "" {
		body["sourceLang"] = trimmed
	}
	return c.post(ctx, "/translate-word", body)
}

// Words adapts the client to the hover cache's word lookup.
func (c *Client) Words() WordTranslator {
	return WordTranslator{client: c}
}

type WordTranslator struct {
	client *Client
}

func (w WordTranslator) TranslateWord(ctx context.Context, word, sourceLang, targetLang string) (string, error) {
	envelope, err := w.client.TranslateWord(ctx, word, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if err := envelope.Err(); err != nil {
		return "", err
	}
	return envelope.TranslatedText, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Envelope, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return envelopeFromResponse(status, body), nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, translation.NewError(translation.KindTransport, translation.MsgServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, translation.NewError(translation.KindTransport, translation.MsgServiceUnavailable, fmt.Errorf("read response body: %w", err))
	}
	return resp.StatusCode, body, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// envelopeFromResponse normalizes a proxy answer. Non-2xx answers carry the
// proxy's {"error","kind"} body; 2xx answers carry the provider payload,
// whose body code still decides the outcome.
func envelopeFromResponse(status int, body []byte) *Envelope {
	if status < 200 || status > 299 {
		return errorEnvelope(proxyError(status, body))
	}

	payload, err := ValidateProviderPayload(body)
	if err != nil {
		return errorEnvelope(translation.NewError(translation.KindUpstream, translation.MsgTranslationFailed, err))
	}
	if failure := translation.InterpretPassage(&translation.ProviderResponse{
		HTTPStatus: status,
		Decoded:    true,
		Code:       payload.Code,
		Msg:        payload.Message(),
	}); failure != nil {
		return errorEnvelope(failure)
	}
	return okEnvelope(payload.TranslatedText())
}

type proxyErrorBody struct {
	Error string                `json:"error"`
	Kind  translation.ErrorKind `json:"kind"`
}

func proxyError(status int, body []byte) *translation.Error {
	var decoded proxyErrorBody
	_ = json.Unmarshal(body, &decoded)

	message := strings.TrimSpace(decoded.Error)
	if message == "" {
		message = translation.MsgTranslationFailed
	}
	kind := decoded.Kind
	if kind == "" {
		kind = kindForStatus(status)
	}
	return translation.NewError(kind, message, fmt.Errorf("proxy answered HTTP %d", status))
}

func kindForStatus(status int) translation.ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return translation.KindAuth
	case http.StatusPaymentRequired:
		return translation.KindBilling
	case http.StatusTooManyRequests:
		return translation.KindRateLimit
	default:
		return translation.KindUpstream
	}
}

// IsTransport reports whether err means the proxy could not be reached.
func IsTransport(err error) bool {
	var classified *translation.Error
	return errors.As(err, &classified) && classified.Kind == translation.KindTransport
}
