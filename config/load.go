package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the configuration document from path, unmarshals it, and
// validates it before the config is considered usable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}
	cfg.Source = path

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration in %q: %w", path, err)
	}

	return &cfg, nil
}
