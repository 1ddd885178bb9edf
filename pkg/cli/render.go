package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/roowe/websearch/pkg/search"
	"github.com/roowe/websearch/pkg/shared/stringutil"
)

type Format string

const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatSimple Format = "simple"
)

const tableSnippetChars = 200

// ParseFormat accepts the --format flag value.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSimple:
		return FormatSimple, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or simple)", value)
}

// RenderOptions controls how results are printed.
type RenderOptions struct {
	Format   Format
	Provider string
	// Raw includes provider-specific extras.
	Raw bool
	// Color enables ANSI styling in table output.
	Color bool
}

// Render writes results to w in the requested format.
func Render(w io.Writer, results []search.Result, opts RenderOptions) error {
	switch opts.Format {
	case FormatJSON:
		return renderJSON(w, results, opts.Raw)
	case FormatSimple:
		return renderSimple(w, results)
	default:
		return renderTable(w, results, opts)
	}
}

func renderJSON(w io.Writer, results []search.Result, raw bool) error {
	out := make([]search.Result, len(results))
	for i, result := range results {
		if !raw {
			result.Raw = nil
		}
		out[i] = result
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func renderSimple(w io.Writer, results []search.Result) error {
	var sb strings.Builder
	for i, result := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, result.Title)
		fmt.Fprintf(&sb, "   %s\n", result.URL)
		if result.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", result.Snippet)
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type tableStyle struct {
	bold, provider, url, domain, snippet, date, dim *color.Color
}

func newTableStyle(enabled bool) tableStyle {
	s := tableStyle{
		bold:     color.New(color.Bold),
		provider: color.New(color.Bold, color.FgBlue),
		url:      color.New(color.FgBlue, color.Underline),
		domain:   color.New(color.FgGreen),
		snippet:  color.New(color.Italic),
		date:     color.New(color.FgYellow),
		dim:      color.New(color.Faint),
	}
	for _, c := range []*color.Color{s.bold, s.provider, s.url, s.domain, s.snippet, s.date, s.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func renderTable(w io.Writer, results []search.Result, opts RenderOptions) error {
	style := newTableStyle(opts.Color)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", style.bold.Sprint("Search Results from"), style.provider.Sprint(opts.Provider))
	sb.WriteString(style.dim.Sprint(strings.Repeat("─", 80)))
	sb.WriteString("\n")

	for i, result := range results {
		fmt.Fprintf(&sb, "%s. %s\n", style.bold.Sprint(i+1), style.bold.Sprint(result.Title))
		fmt.Fprintf(&sb, "   URL: %s\n", style.url.Sprint(result.URL))
		if result.Domain != "" {
			fmt.Fprintf(&sb, "   Domain: %s\n", style.domain.Sprint(result.Domain))
		}
		if result.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", style.snippet.Sprint(stringutil.Truncate(result.Snippet, tableSnippetChars)))
		}
		if result.PublishedDate != "" {
			fmt.Fprintf(&sb, "   Published: %s\n", style.date.Sprint(result.PublishedDate))
		}
		if opts.Raw && len(result.Raw) > 0 {
			raw, err := json.MarshalIndent(result.Raw, "   ", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode raw fields: %w", err)
			}
			fmt.Fprintf(&sb, "   Raw: %s\n", raw)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%s %s\n", style.bold.Sprint("Total results:"), style.bold.Sprint(len(results)))
	_, err := io.WriteString(w, sb.String())
	return err
}

// colorEnabled reports whether w is a terminal that should get ANSI colors.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
