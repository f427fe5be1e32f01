package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/rls-analyzer/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
id: team-rules
disabled_checks:
  - dollar_quoting
severity_overrides:
  dynamic_execution: low
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "team-rules", cfg.ID)
	assert.Equal(t, []string{"dollar_quoting"}, cfg.DisabledChecks)
	assert.Equal(t, types.SeverityLow, cfg.SeverityOverrides["dynamic_execution"])
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeFile(t, "config.json",
		`{"id": "ci", "disabled_checks": ["sql_injection"]}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ci", cfg.ID)
	assert.Equal(t, []string{"sql_injection"}, cfg.DisabledChecks)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := writeFile(t, "config.yaml", "id: [unclosed")
	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default("local")
	assert.Equal(t, "local", cfg.ID)
	assert.Empty(t, cfg.DisabledChecks)
	assert.Empty(t, cfg.SeverityOverrides)
}
