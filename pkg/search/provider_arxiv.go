package search

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exslices"

	"github.com/roowe/websearch/pkg/shared/httputil"
	"github.com/roowe/websearch/pkg/shared/stringutil"
)

var arxivFieldPrefixRE = regexp.MustCompile(`(?i)(^|[\s(])(ti|au|abs|co|jr|cat|rn|id|all):`)

// ArxivProvider queries the arXiv Atom API.
type ArxivProvider struct {
	cfg ArxivConfig
}

// NewArxivProvider returns a provider for cfg; zero fields take defaults.
func NewArxivProvider(cfg ArxivConfig) *ArxivProvider {
	return &ArxivProvider{cfg: cfg.withDefaults()}
}

func (p *ArxivProvider) Name() string {
	return ProviderArxiv
}

// BuildRequest runs in ID mode when opts.ArxivIDs names at least one paper,
// otherwise in search mode.
func (p *ArxivProvider) BuildRequest(ctx context.Context, opts Options) (*http.Request, error) {
	limit := opts.Limit()
	if limit <= 0 {
		return nil, invalidInput(p.Name(), "max results must be positive, got %d", limit)
	}
	searchURL, err := url.Parse(strings.TrimSpace(p.cfg.BaseURL))
	if err != nil || searchURL.Host == "" {
		return nil, invalidInput(p.Name(), "invalid base url %q", p.cfg.BaseURL)
	}

	values := searchURL.Query()
	ids := normalizeArxivIDs(opts.ArxivIDs)
	switch {
	case len(ids) > 0:
		values.Set("id_list", strings.Join(ids, ","))
		if strings.TrimSpace(opts.Query) != "" {
			zerolog.Ctx(ctx).Debug().Msg("ArXiv id lookup ignores the search query")
		}
	case strings.TrimSpace(opts.Query) != "":
		values.Set("search_query", arxivSearchQuery(opts.Query))
		if opts.SortBy != "" {
			sortBy, ok := arxivSortBy(opts.SortBy)
			if !ok {
				return nil, unsupported(p.Name(), "sort field %q is not supported", opts.SortBy)
			}
			values.Set("sortBy", sortBy)
		}
		if opts.SortOrder != "" {
			if opts.SortOrder != SortAscending && opts.SortOrder != SortDescending {
				return nil, unsupported(p.Name(), "sort order %q is not supported", opts.SortOrder)
			}
			values.Set("sortOrder", string(opts.SortOrder))
		}
	default:
		return nil, invalidInput(p.Name(), "a search query or a list of arxiv ids is required")
	}
	values.Set("start", "0")
	values.Set("max_results", strconv.Itoa(limit))
	searchURL.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, invalidInput(p.Name(), "failed to create request: %v", err)
	}
	httputil.ApplyHeaders(req, httputil.MergeHeaders(map[string]string{
		"User-Agent": p.cfg.UserAgent,
		"Accept":     "application/atom+xml,application/xml;q=0.9,*/*;q=0.8",
	}, p.cfg.Headers))
	return req, nil
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Published       string          `xml:"published"`
	Updated         string          `xml:"updated"`
	Comment         string          `xml:"comment"`
	JournalRef      string          `xml:"journal_ref"`
	DOI             string          `xml:"doi"`
	Authors         []arxivAuthor   `xml:"author"`
	Links           []arxivLink     `xml:"link"`
	Categories      []arxivCategory `xml:"category"`
	PrimaryCategory arxivCategory   `xml:"primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// ParseResponse decodes an Atom feed. A body that is not a well-formed feed
// is a parse error; a feed without entries is an empty list.
func (p *ArxivProvider) ParseResponse(body []byte, opts Options) ([]Result, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, parseError(p.Name(), body, err, "body is not a valid Atom feed")
	}

	limit := opts.Limit()
	results := make([]Result, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if isArxivErrorEntry(entry) {
			return nil, parseError(p.Name(), body, nil, "api error: %s", stringutil.NormalizeSpace(entry.Summary))
		}
		result, ok := NewResult(Fields{
			URL:           entry.canonicalURL(),
			Title:         entry.Title,
			Snippet:       entry.Summary,
			PublishedDate: entry.Published,
			Provider:      p.Name(),
			Raw:           entry.raw(),
		})
		if !ok {
			continue
		}
		results = append(results, result)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// canonicalURL prefers the abstract page (rel="alternate"), then the entry
// id, then the PDF link.
func (e arxivEntry) canonicalURL() string {
	for _, link := range e.Links {
		if strings.EqualFold(link.Rel, "alternate") && strings.TrimSpace(link.Href) != "" {
			return link.Href
		}
	}
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	return e.pdfURL()
}

func (e arxivEntry) pdfURL() string {
	for _, link := range e.Links {
		if strings.EqualFold(link.Title, "pdf") || link.Type == "application/pdf" {
			return strings.TrimSpace(link.Href)
		}
	}
	return ""
}

func (e arxivEntry) raw() map[string]any {
	raw := map[string]any{}
	if id := arxivIDFromURL(e.ID); id != "" {
		raw["arxiv_id"] = id
	}
	authors := make([]string, 0, len(e.Authors))
	for _, author := range e.Authors {
		if name := stringutil.NormalizeSpace(author.Name); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) > 0 {
		raw["authors"] = authors
	}
	categories := make([]string, 0, len(e.Categories))
	for _, category := range e.Categories {
		if term := strings.TrimSpace(category.Term); term != "" {
			categories = append(categories, term)
		}
	}
	if len(categories) > 0 {
		raw["categories"] = categories
	}
	optional := map[string]string{
		"primary_category": e.PrimaryCategory.Term,
		"pdf_url":          e.pdfURL(),
		"updated":          e.Updated,
		"comment":          stringutil.NormalizeSpace(e.Comment),
		"journal_ref":      stringutil.NormalizeSpace(e.JournalRef),
		"doi":              e.DOI,
	}
	for key, value := range optional {
		if value = strings.TrimSpace(value); value != "" {
			raw[key] = value
		}
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func isArxivErrorEntry(e arxivEntry) bool {
	return strings.Contains(e.ID, "arxiv.org/api/errors")
}

// arxivIDFromURL extracts "2301.00001v1" from "http://arxiv.org/abs/2301.00001v1".
func arxivIDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	_, id, found := strings.Cut(raw, "/abs/")
	if !found {
		return ""
	}
	return strings.Trim(id, "/")
}

func normalizeArxivIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
			id = strings.TrimSpace(id[6:])
		}
		if id == "" {
			continue
		}
		out = append(out, id)
	}
	return exslices.DeduplicateUnsorted(out)
}

// arxivSearchQuery passes queries that already use arXiv field prefixes
// through unchanged and searches all fields otherwise.
func arxivSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if arxivFieldPrefixRE.MatchString(query) {
		return query
	}
	return "all:" + query
}

func arxivSortBy(sortBy SortBy) (string, bool) {
	switch sortBy {
	case SortByRelevance:
		return "relevance", true
	case SortBySubmittedDate:
		return "submittedDate", true
	case SortByLastUpdatedDate:
		return "lastUpdatedDate", true
	}
	return "", false
}
