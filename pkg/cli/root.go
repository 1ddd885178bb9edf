package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.mau.fi/util/ptr"

	"github.com/roowe/websearch/pkg/search"
	"github.com/roowe/websearch/pkg/shared/httputil"
	"github.com/roowe/websearch/pkg/shared/stringutil"
)

type flags struct {
	provider   string
	maxResults int
	format     string
	arxivIDs   string
	sortBy     string
	sortOrder  string
	language   string
	region     string
	safeSearch string
	timeout    int
	configPath string
	raw        bool
	debug      bool
}

// NewRootCmd builds the websearch command.
func NewRootCmd(version string) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "websearch [query]",
		Short: "Web search CLI (DuckDuckGo & ArXiv)",
		Long: `Web search CLI (DuckDuckGo & ArXiv)

Search the web via DuckDuckGo or look up papers on arXiv.

Examples:
  websearch "rust async runtime"
  websearch "attention is all you need" -p arxiv --sort-by submitted-date
  websearch -p arxiv --arxiv-ids 2301.00001,2301.00002 -f json`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, strings.Join(args, " "))
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	fl := cmd.Flags()
	fl.StringVarP(&f.provider, "provider", "p", "", "Search provider (duckduckgo or arxiv)")
	fl.IntVarP(&f.maxResults, "max-results", "m", search.DefaultMaxResults, "Maximum number of results")
	fl.StringVarP(&f.format, "format", "f", string(FormatTable), "Output format (table, json or simple)")
	fl.StringVar(&f.arxivIDs, "arxiv-ids", "", "ArXiv paper IDs, comma-separated (arxiv provider)")
	fl.StringVar(&f.sortBy, "sort-by", "", "Sort field: relevance, submitted-date or last-updated-date (arxiv provider)")
	fl.StringVar(&f.sortOrder, "sort-order", "", "Sort order: ascending or descending (arxiv provider)")
	fl.StringVarP(&f.language, "language", "l", "", "Language code, e.g. en, es, fr")
	fl.StringVarP(&f.region, "region", "r", "", "Region code, e.g. US, UK, DE")
	fl.StringVarP(&f.safeSearch, "safe-search", "s", "", "Safe search: off, moderate or strict")
	fl.IntVar(&f.timeout, "timeout", 0, "Request timeout in seconds (default from config, 30)")
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.BoolVar(&f.raw, "raw", false, "Show provider-specific raw fields")
	fl.BoolVarP(&f.debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func run(cmd *cobra.Command, f *flags, query string) error {
	log := NewLogger(cmd.ErrOrStderr(), f.debug)
	ctx := log.WithContext(cmd.Context())

	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	opts, err := buildOptions(cmd, f, cfg, query)
	if err != nil {
		return err
	}
	format, err := ParseFormat(f.format)
	if err != nil {
		return usageError(err)
	}

	timeout := cfg.TimeoutSecs
	if f.timeout > 0 {
		timeout = f.timeout
	}
	opts.HTTPClient = httputil.NewClient(timeout)

	results, err := search.WebSearch(ctx, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return Render(out, results, RenderOptions{
		Format:   format,
		Provider: opts.Provider.Name(),
		Raw:      f.raw,
		Color:    colorEnabled(out),
	})
}

func buildOptions(cmd *cobra.Command, f *flags, cfg *search.Config, query string) (search.Options, error) {
	providerName := strings.ToLower(stringutil.FirstNonEmpty(strings.TrimSpace(f.provider), cfg.Provider))
	provider := search.NewRegistry(cfg).Get(providerName)
	if provider == nil {
		return search.Options{}, &search.Error{
			Kind:    search.KindInvalidInput,
			Message: fmt.Sprintf("unknown or disabled provider %q", providerName),
		}
	}

	maxResults := cfg.MaxResults
	if cmd.Flags().Changed("max-results") {
		maxResults = f.maxResults
	}
	sortBy, err := search.ParseSortBy(f.sortBy)
	if err != nil {
		return search.Options{}, usageError(err)
	}
	sortOrder, err := search.ParseSortOrder(f.sortOrder)
	if err != nil {
		return search.Options{}, usageError(err)
	}
	safeSearch, err := search.ParseSafeSearch(f.safeSearch)
	if err != nil {
		return search.Options{}, usageError(err)
	}

	return search.Options{
		Query:      strings.TrimSpace(query),
		MaxResults: ptr.Ptr(maxResults),
		Provider:   provider,
		ArxivIDs:   stringutil.SplitCSV(f.arxivIDs),
		SortBy:     sortBy,
		SortOrder:  sortOrder,
		Language:   f.language,
		Region:     f.region,
		SafeSearch: safeSearch,
	}, nil
}

func usageError(err error) error {
	return &search.Error{Kind: search.KindInvalidInput, Message: err.Error()}
}
