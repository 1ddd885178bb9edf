package search

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/roowe/websearch/pkg/shared/httputil"
	"github.com/roowe/websearch/pkg/shared/stringutil"
)

const (
	ddgSearchPath     = "/html/"
	ddgResultSelector = ".result, .web-result"
	ddgLinkSelector   = "a.result__a"
	ddgSnippetSel     = ".result__snippet"
	ddgAdClass        = "result--ad"
)

// DuckDuckGoProvider scrapes the DuckDuckGo HTML results page.
type DuckDuckGoProvider struct {
	cfg DDGConfig
}

// NewDuckDuckGoProvider returns a provider for cfg; zero fields take defaults.
func NewDuckDuckGoProvider(cfg DDGConfig) *DuckDuckGoProvider {
	return &DuckDuckGoProvider{cfg: cfg.withDefaults()}
}

func (p *DuckDuckGoProvider) Name() string {
	return ProviderDuckDuckGo
}

func (p *DuckDuckGoProvider) BuildRequest(ctx context.Context, opts Options) (*http.Request, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		if len(opts.ArxivIDs) > 0 {
			return nil, invalidInput(p.Name(), "a search query is required; paper id lookup is arxiv-only")
		}
		return nil, invalidInput(p.Name(), "a search query is required")
	}

	endpoint := resolveEndpoint(p.cfg.BaseURL, ddgSearchPath)
	searchURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, invalidInput(p.Name(), "invalid base url %q: %v", p.cfg.BaseURL, err)
	}
	values := searchURL.Query()
	values.Set("q", query)
	if kl := ddgRegionCode(stringutil.FirstNonEmpty(opts.Region, p.cfg.Region), opts.Language); kl != "" {
		values.Set("kl", kl)
	}
	safe := opts.SafeSearch
	if safe == "" {
		safe, _ = ParseSafeSearch(p.cfg.SafeSearch)
	}
	if kp := ddgSafeSearchCode(safe); kp != "" {
		values.Set("kp", kp)
	}
	searchURL.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, invalidInput(p.Name(), "failed to create request: %v", err)
	}
	httputil.ApplyHeaders(req, httputil.MergeHeaders(map[string]string{
		"User-Agent":      p.cfg.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": acceptLanguage(opts.Language),
	}, p.cfg.Headers))

	if ignored := ddgIgnoredOptions(opts); len(ignored) > 0 {
		zerolog.Ctx(ctx).Debug().Strs("ignored", ignored).Msg("DuckDuckGo ignores arxiv-only options")
	}
	return req, nil
}

// ParseResponse extracts result blocks from the results page. A page with no
// recognizable blocks yields an empty list.
func (p *DuckDuckGoProvider) ParseResponse(body []byte, opts Options) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError(p.Name(), body, err, "body is not an HTML document")
	}

	limit := opts.Limit()
	results := make([]Result, 0)
	doc.Find(ddgResultSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if block.HasClass(ddgAdClass) {
			return true
		}
		link := block.Find(ddgLinkSelector).First()
		if link.Length() == 0 {
			link = block.Find("h2 a").First()
		}
		href, _ := link.Attr("href")
		result, ok := NewResult(Fields{
			URL:      unwrapDDGRedirect(href),
			Title:    link.Text(),
			Snippet:  block.Find(ddgSnippetSel).First().Text(),
			Provider: p.Name(),
		})
		if !ok {
			return true
		}
		results = append(results, result)
		return limit <= 0 || len(results) < limit
	})
	return results, nil
}

// unwrapDDGRedirect recovers the destination of a DuckDuckGo redirect link
// (//duckduckgo.com/l/?uddg=<encoded target>). Links that stay on
// duckduckgo.com without a target, such as ad trackers, yield "".
func unwrapDDGRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if parsed.Host != "" && !isDuckDuckGoHost(parsed.Hostname()) {
		return href
	}
	return strings.TrimSpace(parsed.Query().Get("uddg"))
}

func isDuckDuckGoHost(host string) bool {
	host = strings.ToLower(host)
	return host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com")
}

// ddgRegionCode builds the kl parameter, e.g. "us-en". A region that already
// carries a language part is passed through.
func ddgRegionCode(region, language string) string {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return ""
	}
	if strings.Contains(region, "-") {
		return region
	}
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = "en"
	}
	return region + "-" + language
}

func ddgSafeSearchCode(level SafeSearch) string {
	switch level {
	case SafeSearchStrict:
		return "1"
	case SafeSearchModerate:
		return "-1"
	case SafeSearchOff:
		return "-2"
	}
	return ""
}

func acceptLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return "en-US,en;q=0.9"
	}
	return language + ",en;q=0.8"
}

func ddgIgnoredOptions(opts Options) []string {
	var ignored []string
	if len(opts.ArxivIDs) > 0 {
		ignored = append(ignored, "arxiv_ids")
	}
	if opts.SortBy != "" {
		ignored = append(ignored, "sort_by")
	}
	if opts.SortOrder != "" {
		ignored = append(ignored, "sort_order")
	}
	return ignored
}
