package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/roowe/websearch/pkg/shared/stringutil"
)

// Kind classifies a search failure.
type Kind string

const (
	// KindTransport means the provider could not be reached: connection
	// failure, timeout or cancellation.
	KindTransport Kind = "transport"
	// KindHTTP means the provider answered with a non-2xx status.
	KindHTTP Kind = "http"
	// KindParse means the response body was not in the expected format.
	KindParse Kind = "parse"
	// KindInvalidInput means the caller's options were unusable.
	KindInvalidInput Kind = "invalid_input"
	// KindProviderUnsupported means an option was requested that the bound
	// provider cannot honor.
	KindProviderUnsupported Kind = "provider_unsupported"
	KindUnknown             Kind = "unknown"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrTransport           = &Error{Kind: KindTransport}
	ErrHTTP                = &Error{Kind: KindHTTP}
	ErrParse               = &Error{Kind: KindParse}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrProviderUnsupported = &Error{Kind: KindProviderUnsupported}
)

const maxSnippetChars = 200

// Error is the single error type returned by providers and WebSearch.
type Error struct {
	Kind     Kind
	Provider string
	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int
	Message    string
	// Snippet is a bounded excerpt of the offending input or response body.
	Snippet string
	// Timeout is set when a transport failure was caused by an expired
	// deadline. Cancellation leaves it unset.
	Timeout bool
	// RetryAfter is the delay requested by the provider's Retry-After
	// header on an HTTP failure, 0 when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Provider != "" {
		sb.WriteString(e.Provider)
		sb.WriteString(": ")
	}
	switch e.Kind {
	case KindTransport:
		switch {
		case e.Timeout:
			sb.WriteString("request timed out")
		case errors.Is(e.Err, context.Canceled):
			sb.WriteString("request canceled")
		default:
			sb.WriteString("request failed")
		}
	case KindHTTP:
		fmt.Fprintf(&sb, "http %d", e.StatusCode)
	case KindParse:
		sb.WriteString("failed to parse response")
	case KindInvalidInput:
		sb.WriteString("invalid input")
	case KindProviderUnsupported:
		sb.WriteString("unsupported option")
	default:
		sb.WriteString("search failed")
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil && !strings.Contains(e.Message, e.Err.Error()) {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func invalidInput(provider, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

func unsupported(provider, format string, args ...any) *Error {
	return &Error{Kind: KindProviderUnsupported, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

func parseError(provider string, body []byte, err error, format string, args ...any) *Error {
	return &Error{
		Kind:     KindParse,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
		Snippet:  excerpt(body),
		Err:      err,
	}
}

func excerpt(body []byte) string {
	return stringutil.Truncate(stringutil.NormalizeSpace(string(body)), maxSnippetChars)
}

// Hint returns troubleshooting advice for a failed search.
func Hint(err error) string {
	var se *Error
	if !errors.As(err, &se) {
		return ""
	}
	switch se.Kind {
	case KindInvalidInput, KindProviderUnsupported:
		return "Check the query and the options supported by the selected provider."
	case KindParse:
		return "The provider returned a response in an unexpected format; its page layout or API may have changed."
	case KindHTTP:
		switch {
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return "The provider refused the request. This is likely an authentication or blocking issue."
		case se.StatusCode == http.StatusBadRequest:
			return "This is likely due to invalid request parameters. Check your query and other search options."
		case se.StatusCode == http.StatusTooManyRequests:
			if se.RetryAfter > 0 {
				return fmt.Sprintf("You've exceeded the rate limit for this provider. The provider asked to retry after %s.", se.RetryAfter.Round(time.Second))
			}
			return "You've exceeded the rate limit for this provider. Try again later or reduce your request frequency."
		case se.StatusCode >= 500:
			return "The search provider is experiencing server issues. Try again later."
		}
	}
	switch se.Provider {
	case ProviderDuckDuckGo:
		return "You may be making too many requests to DuckDuckGo. Try adding a delay between requests."
	case ProviderArxiv:
		return "ArXiv may be temporarily unavailable. Try again later or reduce your request frequency."
	}
	if se.Provider != "" {
		return fmt.Sprintf("Check your %s configuration and make sure your search request is valid.", se.Provider)
	}
	return ""
}
