package search

import (
	"strings"

	"github.com/roowe/websearch/pkg/shared/httputil"
)

const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderArxiv      = "arxiv"

	DefaultProvider     = ProviderDuckDuckGo
	DefaultTimeoutSecs  = httputil.DefaultTimeoutSecs
	DefaultMaxBodyBytes = 8 << 20

	DefaultDDGBaseURL   = "https://html.duckduckgo.com"
	DefaultArxivBaseURL = "https://export.arxiv.org/api/query"
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config controls provider selection and per-provider endpoints.
type Config struct {
	Provider    string `yaml:"provider"`
	MaxResults  int    `yaml:"max_results"`
	TimeoutSecs int    `yaml:"timeout_seconds"`

	DDG   DDGConfig   `yaml:"duckduckgo"`
	Arxiv ArxivConfig `yaml:"arxiv"`
}

type DDGConfig struct {
	Enabled    *bool             `yaml:"enabled"`
	BaseURL    string            `yaml:"base_url"`
	UserAgent  string            `yaml:"user_agent"`
	Region     string            `yaml:"region"`
	SafeSearch string            `yaml:"safe_search"`
	Headers    map[string]string `yaml:"headers"`
}

type ArxivConfig struct {
	Enabled   *bool             `yaml:"enabled"`
	BaseURL   string            `yaml:"base_url"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
}

// WithDefaults fills unset fields. A nil receiver yields a fresh default config.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	if strings.TrimSpace(c.Provider) == "" {
		c.Provider = DefaultProvider
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	c.DDG = c.DDG.withDefaults()
	c.Arxiv = c.Arxiv.withDefaults()
	return c
}

func (c DDGConfig) withDefaults() DDGConfig {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultDDGBaseURL
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

func (c ArxivConfig) withDefaults() ArxivConfig {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultArxivBaseURL
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

func isEnabled(flag *bool, fallback bool) bool {
	if flag == nil {
		return fallback
	}
	return *flag
}
