package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParsePolicyCommand(t *testing.T) {
	tests := []struct {
		in   string
		want PolicyCommand
	}{
		{"SELECT", CommandSelect},
		{"select", CommandSelect},
		{"r", CommandSelect},
		{"INSERT", CommandInsert},
		{"a", CommandInsert},
		{"UPDATE", CommandUpdate},
		{"w", CommandUpdate},
		{"DELETE", CommandDelete},
		{"d", CommandDelete},
		{"ALL", CommandAll},
		{"*", CommandAll},
		{" all ", CommandAll},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicyCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePolicyCommandUnknown(t *testing.T) {
	_, err := ParsePolicyCommand("TRUNCATE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown policy command")
}

func TestCommandCovers(t *testing.T) {
	assert.True(t, CommandSelect.Covers(CommandSelect))
	assert.True(t, CommandAll.Covers(CommandDelete))
	assert.True(t, CommandDelete.Covers(CommandAll))
	assert.False(t, CommandSelect.Covers(CommandInsert))
}

func TestPolicyUnmarshalYAML(t *testing.T) {
	doc := `
name: tenant_isolation
table: documents
command: select
kind: restrictive
expression: auth.uid() = user_id
`
	var p Policy
	require.NoError(t, yaml.Unmarshal([]byte(doc), &p))
	assert.Equal(t, CommandSelect, p.Command)
	assert.Equal(t, KindRestrictive, p.Kind)
	assert.Equal(t, "auth.uid() = user_id", p.Expression)
}

func TestPolicyKindDefaultsToPermissive(t *testing.T) {
	var k PolicyKind
	require.NoError(t, yaml.Unmarshal([]byte(`""`), &k))
	assert.Equal(t, KindPermissive, k)
}

func TestPolicyKindUnknown(t *testing.T) {
	var k PolicyKind
	err := yaml.Unmarshal([]byte(`sideways`), &k)
	require.Error(t, err)
}

func TestSeverityAtLeast(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityMedium.AtLeast(SeverityHigh))
	assert.False(t, SeverityLow.AtLeast(SeverityCritical))
}
