package search

import (
	"fmt"
	"strings"
)

// DefaultMaxResults caps the result list when Options.MaxResults is nil.
const DefaultMaxResults = 10

// Options describes a single search call. Options are passed by value and
// never modified by the search pipeline.
//
// Fields only understood by one backend are ignored by the others:
// ArxivIDs, SortBy and SortOrder belong to arXiv; Language, Region and
// SafeSearch belong to DuckDuckGo.
type Options struct {
	// Query is the free-text search. It may be empty only when ArxivIDs
	// is set and the provider is arXiv.
	Query string
	// MaxResults caps the number of returned results. Nil means
	// DefaultMaxResults; a set value must be positive.
	MaxResults *int
	// Provider is the backend the search runs against. Required.
	Provider Provider

	// ArxivIDs requests exactly these papers instead of running a search.
	ArxivIDs []string
	// SortBy orders arXiv search results.
	SortBy SortBy
	// SortOrder is the direction for SortBy.
	SortOrder SortOrder

	// Language is a language code such as "en" or "de".
	Language string
	// Region is a country code such as "us" or "de".
	Region string
	// SafeSearch filters adult content.
	SafeSearch SafeSearch

	// HTTPClient performs the request. Nil uses a shared default client.
	HTTPClient Doer
}

// Limit returns the effective result cap.
func (o Options) Limit() int {
	if o.MaxResults == nil {
		return DefaultMaxResults
	}
	return *o.MaxResults
}

// Result is one validated search hit. Build it with NewResult.
type Result struct {
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	Snippet       string         `json:"snippet,omitempty"`
	Domain        string         `json:"domain,omitempty"`
	PublishedDate string         `json:"published_date,omitempty"`
	Provider      string         `json:"provider,omitempty"`
	Raw           map[string]any `json:"raw,omitempty"`
}

type SortBy string

const (
	SortByRelevance       SortBy = "relevance"
	SortBySubmittedDate   SortBy = "submitted-date"
	SortByLastUpdatedDate SortBy = "last-updated-date"
)

// ParseSortBy accepts the CLI spelling of a sort field.
func ParseSortBy(value string) (SortBy, error) {
	switch SortBy(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case SortByRelevance:
		return SortByRelevance, nil
	case SortBySubmittedDate:
		return SortBySubmittedDate, nil
	case SortByLastUpdatedDate:
		return SortByLastUpdatedDate, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want relevance, submitted-date or last-updated-date)", value)
}

type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// ParseSortOrder accepts the CLI spelling of a sort direction.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case SortAscending:
		return SortAscending, nil
	case SortDescending:
		return SortDescending, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want ascending or descending)", value)
}

type SafeSearch string

const (
	SafeSearchOff      SafeSearch = "off"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchStrict   SafeSearch = "strict"
)

// ParseSafeSearch accepts the CLI spelling of a safe-search level.
func ParseSafeSearch(value string) (SafeSearch, error) {
	switch SafeSearch(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case SafeSearchOff:
		return SafeSearchOff, nil
	case SafeSearchModerate:
		return SafeSearchModerate, nil
	case SafeSearchStrict:
		return SafeSearchStrict, nil
	}
	return "", fmt.Errorf("unknown safe search level %q (want off, moderate or strict)", value)
}
