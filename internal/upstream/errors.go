package upstream

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed forwarded call. Every outcome is terminal;
// the gateway never retries on its own.
type ErrorKind int

const (
	// KindTransport - timeout or connection failure, the provider never answered.
	KindTransport ErrorKind = iota
	// KindMalformed - the provider answered with an unexpected shape (HTML
	// instead of JSON, missing fields).
	KindMalformed
	// KindUpstream - the provider answered with a 4xx/5xx status.
	KindUpstream
)

// Error carries the status and message safe to mirror to the client. Raw
// provider bodies stay server-side.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Message)
}

func NewTransportError(service string) *Error {
	return &Error{
		Kind:       KindTransport,
		StatusCode: http.StatusServiceUnavailable,
		Message:    service + " did not respond. Please try again later.",
	}
}

func NewErrorPage(service string) *Error {
	return &Error{
		Kind:       KindMalformed,
		StatusCode: http.StatusInternalServerError,
		Message:    service + " returned an error page",
	}
}

func NewMalformed(service string) *Error {
	return &Error{
		Kind:       KindMalformed,
		StatusCode: http.StatusInternalServerError,
		Message:    "Invalid response from " + strings.ToLower(service),
	}
}

// NormalizeStatus maps a provider status to the error the caller may see.
// 4xx statuses are mirrored with the provider message when one is safe to
// show; 500 is rewritten so provider internals never leak; 429 becomes the
// shared rate-limited message.
func NormalizeStatus(status int, providerMessage string) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{
			Kind:       KindUpstream,
			StatusCode: status,
			Message:    "Service is rate limited. Please try again later.",
		}
	case status >= http.StatusInternalServerError:
		return &Error{
			Kind:       KindUpstream,
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal error, please try again",
		}
	default:
		msg := providerMessage
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{
			Kind:       KindUpstream,
			StatusCode: status,
			Message:    msg,
		}
	}
}

// IsHTMLBody reports whether a body that should have been JSON is actually a
// markup error page.
func IsHTMLBody(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}
