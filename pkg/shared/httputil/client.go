package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeoutSecs bounds a whole request/response exchange when no
// explicit timeout is configured.
const DefaultTimeoutSecs = 30

// NewClient returns an HTTP client whose requests time out after timeoutSecs.
// Non-positive values fall back to DefaultTimeoutSecs.
func NewClient(timeoutSecs int) *http.Client {
	if timeoutSecs <= 0 {
		timeoutSecs = DefaultTimeoutSecs
	}
	return &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second}
}

// ReadBody reads at most limit bytes of the response body.
// A non-positive limit reads the whole body.
func ReadBody(resp *http.Response, limit int64) ([]byte, error) {
	var reader io.Reader = resp.Body
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
