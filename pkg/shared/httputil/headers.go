package httputil

import (
	"maps"
	"net/http"
)

// MergeHeaders merges override headers into base, returning a new map.
func MergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string)
	}
	maps.Copy(out, override)
	return out
}

// ApplyHeaders sets every non-empty header value on req.
func ApplyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		if v == "" {
			continue
		}
		req.Header.Set(k, v)
	}
}
