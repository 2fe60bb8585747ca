package translation

import (
	"context"
	"encoding/json"
)

// Provider forwards one translation request to an upstream service and
// returns its answer without judging it. Only transport failures are errors.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*ProviderResponse, error)
	Name() string
}

// Granularity distinguishes full-passage requests from single-word lookups.
type Granularity string

const (
	GranularityPassage Granularity = "passage"
	GranularityWord    Granularity = "word"
)

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text        string
	SourceLang  string // ISO 639-1, "sa" when empty
	TargetLang  string
	Granularity Granularity
}

// ProviderResponse is the provider's answer as received. Body is kept
// byte-for-byte so proxies can forward it unchanged.
type ProviderResponse struct {
	HTTPStatus int
	Body       json.RawMessage

	// Decoded is false when Body is not a JSON object with a numeric code.
	Decoded        bool
	Code           int
	Msg            string
	TranslatedText string

	ProviderName string
	LatencyMs    int64
}

// TransportOK reports whether the HTTP exchange itself succeeded.
func (r *ProviderResponse) TransportOK() bool {
	return r != nil && r.HTTPStatus >= 200 && r.HTTPStatus < 300
}
