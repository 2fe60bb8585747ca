package translation

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a translation did not produce text.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindAuth          ErrorKind = "auth"
	KindBilling       ErrorKind = "billing"
	KindRateLimit     ErrorKind = "rate_limit"
	KindUpstream      ErrorKind = "upstream"
	KindTransport     ErrorKind = "transport"
	KindValidation    ErrorKind = "validation"
)

// Messages returned to callers. They are part of the public contract.
const (
	MsgAPIKeyNotConfigured = "API key not configured"
	MsgAPIKeyNotValidated  = "API key not validated"
	MsgInsufficientBalance = "Insufficient account balance"
	MsgRateExceeded        = "Request rate exceeded"
	MsgTranslationFailed   = "Translation failed"
	MsgServiceUnavailable  = "Translation service unavailable"
	MsgInvalidRequestBody  = "Invalid request body"
	MsgEmptyText           = "Please enter text to translate"
)

// ErrAPIKeyNotConfigured is returned when a provider is built without a credential.
var ErrAPIKeyNotConfigured = NewError(KindConfiguration, MsgAPIKeyNotConfigured, nil)

// Error is a classified translation failure. Message is safe to show to end users.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on kind so callers can compare against sentinel errors such as
// ErrAPIKeyNotConfigured regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Kind == other.Kind && e.Message == other.Message
}

// HTTPStatus maps the error kind to the status code the proxy answers with.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindBilling:
		return http.StatusPaymentRequired
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AsError extracts a classified error, treating anything else as an upstream failure.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return NewError(KindUpstream, MsgTranslationFailed, err)
}
