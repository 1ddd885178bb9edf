package search

import (
	"os"
	"strconv"
	"strings"

	"github.com/roowe/websearch/pkg/shared/stringutil"
)

// ConfigFromEnv builds a search config using environment variables.
func ConfigFromEnv() *Config {
	cfg := &Config{}

	cfg.Provider = stringutil.EnvOr(cfg.Provider, os.Getenv("WEBSEARCH_PROVIDER"))
	cfg.MaxResults = envInt(cfg.MaxResults, os.Getenv("WEBSEARCH_MAX_RESULTS"))
	cfg.TimeoutSecs = envInt(cfg.TimeoutSecs, os.Getenv("WEBSEARCH_TIMEOUT_SECONDS"))

	userAgent := strings.TrimSpace(os.Getenv("WEBSEARCH_USER_AGENT"))

	cfg.DDG.BaseURL = stringutil.EnvOr(cfg.DDG.BaseURL, os.Getenv("DDG_BASE_URL"))
	cfg.DDG.Region = stringutil.EnvOr(cfg.DDG.Region, os.Getenv("DDG_REGION"))
	cfg.DDG.UserAgent = stringutil.EnvOr(cfg.DDG.UserAgent, userAgent)

	cfg.Arxiv.BaseURL = stringutil.EnvOr(cfg.Arxiv.BaseURL, os.Getenv("ARXIV_BASE_URL"))
	cfg.Arxiv.UserAgent = stringutil.EnvOr(cfg.Arxiv.UserAgent, userAgent)

	return cfg.WithDefaults()
}

// ApplyEnvDefaults fills empty config fields from environment variables.
// Values already present in cfg win over the environment.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		return ConfigFromEnv()
	}
	envCfg := ConfigFromEnv()
	current := *cfg

	current.Provider = stringutil.FirstNonEmpty(current.Provider, envCfg.Provider)
	if current.MaxResults <= 0 {
		current.MaxResults = envCfg.MaxResults
	}
	if current.TimeoutSecs <= 0 {
		current.TimeoutSecs = envCfg.TimeoutSecs
	}

	current.DDG.BaseURL = stringutil.FirstNonEmpty(current.DDG.BaseURL, envCfg.DDG.BaseURL)
	current.DDG.Region = stringutil.FirstNonEmpty(current.DDG.Region, envCfg.DDG.Region)
	current.DDG.UserAgent = stringutil.FirstNonEmpty(current.DDG.UserAgent, envCfg.DDG.UserAgent)

	current.Arxiv.BaseURL = stringutil.FirstNonEmpty(current.Arxiv.BaseURL, envCfg.Arxiv.BaseURL)
	current.Arxiv.UserAgent = stringutil.FirstNonEmpty(current.Arxiv.UserAgent, envCfg.Arxiv.UserAgent)

	return current.WithDefaults()
}

func envInt(existing int, value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return existing
	}
	return n
}
