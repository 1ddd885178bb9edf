package search

import (
	"net/url"
	"strings"

	"github.com/roowe/websearch/pkg/shared/stringutil"
)

// Fields holds the raw candidates a provider scraped for one hit.
// Any of them may be blank.
type Fields struct {
	URL           string
	Title         string
	Snippet       string
	PublishedDate string
	Provider      string
	Raw           map[string]any
}

// NewResult validates f and builds a Result from it. It reports false when
// the URL or title is missing, or the URL is not an absolute http(s) URL.
// Dropping such entries is expected; upstream pages are often partial.
func NewResult(f Fields) (Result, bool) {
	rawURL := strings.TrimSpace(f.URL)
	title := stringutil.NormalizeSpace(f.Title)
	if rawURL == "" || title == "" {
		return Result{}, false
	}
	parsed, ok := parseAbsoluteURL(rawURL)
	if !ok {
		return Result{}, false
	}
	return Result{
		Title:         title,
		URL:           parsed.String(),
		Snippet:       stringutil.NormalizeSpace(f.Snippet),
		Domain:        parsed.Hostname(),
		PublishedDate: strings.TrimSpace(f.PublishedDate),
		Provider:      strings.TrimSpace(f.Provider),
		Raw:           f.Raw,
	}, true
}

// Valid reports whether r satisfies the result invariants.
func (r Result) Valid() bool {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.URL) == "" {
		return false
	}
	_, ok := parseAbsoluteURL(r.URL)
	return ok
}

func parseAbsoluteURL(raw string) (*url.URL, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, false
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return nil, false
	}
	return parsed, true
}

func resolveSiteName(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func truncateResults(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
