package search

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.mau.fi/util/retryafter"

	"github.com/roowe/websearch/pkg/shared/httputil"
)

// Doer executes an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var defaultClient = httputil.NewClient(DefaultTimeoutSecs)

// fetch runs req and returns the body of a 2xx response. Failures to reach
// the provider become KindTransport, other statuses KindHTTP.
func fetch(ctx context.Context, client Doer, provider string, req *http.Request) ([]byte, error) {
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:     KindTransport,
			Provider: provider,
			Message:  "could not reach " + req.URL.Host,
			Timeout:  isTimeout(ctx, err),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, readErr := httputil.ReadBody(resp, DefaultMaxBodyBytes)
	if !httputil.IsSuccess(resp.StatusCode) {
		return nil, &Error{
			Kind:       KindHTTP,
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Snippet:    excerpt(body),
			RetryAfter: retryafter.Parse(resp.Header.Get("Retry-After"), 0),
		}
	}
	if readErr != nil {
		return nil, &Error{
			Kind:       KindTransport,
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    "response body interrupted",
			Timeout:    isTimeout(ctx, readErr),
			Err:        readErr,
		}
	}
	return body, nil
}

// isTimeout reports deadline expiry. Explicit cancellation is not a timeout.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// resolveEndpoint appends path to baseURL unless baseURL already names a
// path of its own.
func resolveEndpoint(baseURL, path string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return strings.TrimRight(trimmed, "/") + path
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = path
		return parsed.String()
	}
	return trimmed
}
