package translation

import (
	"encoding/json"
	"strings"
)

// Provider body codes. The provider answers HTTP 200 for most failures and
// reports the real outcome in the body's "code" field.
const (
	CodeOK           = 200
	CodeUnauthorized = 401
	CodeNoBalance    = 402
	CodeRateLimited  = 429
)

// InterpretPassage classifies a full-text response. A nil result means the
// payload is a success and may be forwarded unchanged.
func InterpretPassage(resp *ProviderResponse) *Error {
	if resp == nil {
		return NewError(KindUpstream, MsgTranslationFailed, nil)
	}
	if !resp.Decoded {
		return NewError(KindUpstream, MsgTranslationFailed, nil)
	}

	switch resp.Code {
	case CodeOK:
		if !resp.TransportOK() {
			return NewError(KindUpstream, upstreamMessage(resp), nil)
		}
		return nil
	case CodeUnauthorized:
		return NewError(KindAuth, MsgAPIKeyNotValidated, nil)
	case CodeNoBalance:
		return NewError(KindBilling, MsgInsufficientBalance, nil)
	case CodeRateLimited:
		return NewError(KindRateLimit, MsgRateExceeded, nil)
	default:
		return NewError(KindUpstream, upstreamMessage(resp), nil)
	}
}

// InterpretWord classifies a single-word response. Word lookups are best
// effort: only the transport status matters, and any JSON payload is
// forwarded as-is even when its body code reports a failure.
func InterpretWord(resp *ProviderResponse) *Error {
	if resp == nil || !resp.TransportOK() || !json.Valid(resp.Body) {
		return NewError(KindUpstream, MsgTranslationFailed, nil)
	}
	return nil
}

func upstreamMessage(resp *ProviderResponse) string {
	if msg := strings.TrimSpace(resp.Msg); msg != "" {
		return msg
	}
	return MsgTranslationFailed
}
