// Package gatewayerr defines the typed error kinds the gateway surfaces to
// clients and the HTTP status/code each one maps to.
package gatewayerr

import "fmt"

// Kind identifies one of the error categories from the gateway's error
// handling design: validation, auth, not-found, upstream, exhaustion,
// stream, or internal.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindAuthentication     Kind = "authentication"
	KindNotFound           Kind = "not_found"
	KindUpstream           Kind = "upstream"
	KindAllProvidersFailed Kind = "all_providers_failed"
	KindStream             Kind = "stream_error"
	KindInternal           Kind = "internal"
)

// Error is the gateway's internal error type. Status and Code are what the
// HTTP surface renders into the `{error: {type, code, message}}` envelope.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// EnvelopeType is the `error.type` field in the JSON envelope — OpenAI's
// convention groups most gateway-side failures under "api_error" or
// "invalid_request_error".
func (e *Error) EnvelopeType() string {
	switch e.Kind {
	case KindValidation:
		return "invalid_request_error"
	case KindAuthentication:
		return "authentication_error"
	case KindNotFound:
		return "invalid_request_error"
	default:
		return "api_error"
	}
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Status: 400, Code: code, Message: message}
}

func Authentication(code, message string) *Error {
	return &Error{Kind: KindAuthentication, Status: 401, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Status: 404, Code: code, Message: message}
}

func Upstream(err error, message string) *Error {
	return &Error{Kind: KindUpstream, Status: 502, Code: "provider_error", Message: message, Err: err}
}

// AllProvidersFailed wraps the last upstream error once every candidate has
// been exhausted. The message MUST contain "Last error:" per spec scenario 3.
func AllProvidersFailed(lastErr error) *Error {
	msg := "all providers failed"
	if lastErr != nil {
		msg = fmt.Sprintf("all providers failed. Last error: %v", lastErr)
	}
	return &Error{Kind: KindAllProvidersFailed, Status: 502, Code: "provider_error", Message: msg, Err: lastErr}
}

// NoProvidersAvailable fires when candidate selection yields an empty list.
func NoProvidersAvailable() *Error {
	return &Error{
		Kind:    KindAllProvidersFailed,
		Status:  502,
		Code:    "provider_error",
		Message: "no providers available",
	}
}

func Stream(err error) *Error {
	return &Error{Kind: KindStream, Status: 0, Code: "stream_error", Message: "stream failed", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: 500, Code: "internal_error", Message: "internal error", Err: err}
}

// As extracts a *Error from err if present.
func As(err error) (*Error, bool) {
	ge, ok := err.(*Error)
	return ge, ok
}
