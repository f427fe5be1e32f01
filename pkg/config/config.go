// Package config loads analyzer configuration from YAML or JSON files.
package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// Config customizes the security pattern rule table. Checks are referred
// to by rule name (e.g. "sql_injection", "dollar_quoting").
type Config struct {
	ID                string                    `yaml:"id" json:"id"`
	DisabledChecks    []string                  `yaml:"disabled_checks,omitempty" json:"disabled_checks,omitempty"`
	SeverityOverrides map[string]types.Severity `yaml:"severity_overrides,omitempty" json:"severity_overrides,omitempty"`
}

// Default returns an empty configuration with the given id.
func Default(id string) *Config {
	return &Config{ID: id}
}

// LoadFromFile loads configuration from a YAML or JSON file. YAML is
// tried first, JSON as a fallback.
func LoadFromFile(filename string) (*Config, error) {
	slog.Debug("loading config", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
			return nil, err
		}
	}
	slog.Debug("loaded config", "id", cfg.ID, "disabled_checks", len(cfg.DisabledChecks))
	return &cfg, nil
}
