package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roowe/websearch/pkg/search"
)

// LoadConfig reads an optional YAML config file and fills the gaps from the
// environment. An empty path skips the file; a missing file is an error only
// when the path was given explicitly.
func LoadConfig(path string) (*search.Config, error) {
	cfg := &search.Config{}
	path = strings.TrimSpace(path)
	if path == "" {
		return search.ApplyEnvDefaults(cfg), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return search.ApplyEnvDefaults(cfg), nil
}
