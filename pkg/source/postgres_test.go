package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/rls-analyzer/pkg/types"
)

func TestBuildPolicy(t *testing.T) {
	p, err := BuildPolicy("public", "documents", "tenant_isolation",
		"PERMISSIVE", "r", "(auth.uid() = user_id)", "")
	require.NoError(t, err)

	assert.Equal(t, "tenant_isolation", p.Name)
	assert.Equal(t, "public", p.Schema)
	assert.Equal(t, "documents", p.Table)
	assert.Equal(t, types.CommandSelect, p.Command)
	assert.Equal(t, types.KindPermissive, p.Kind)
	assert.Equal(t, "(auth.uid() = user_id)", p.Expression)
}

func TestBuildPolicyRestrictive(t *testing.T) {
	p, err := BuildPolicy("public", "t", "deny", "RESTRICTIVE", "ALL", "false", "")
	require.NoError(t, err)
	assert.Equal(t, types.KindRestrictive, p.Kind)
	assert.Equal(t, types.CommandAll, p.Command)
}

func TestBuildPolicyWithCheckFallback(t *testing.T) {
	// INSERT policies carry only a WITH CHECK clause.
	p, err := BuildPolicy("public", "t", "insert_own", "PERMISSIVE", "a",
		"", "(auth.uid() = user_id)")
	require.NoError(t, err)
	assert.Equal(t, types.CommandInsert, p.Command)
	assert.Equal(t, "(auth.uid() = user_id)", p.Expression)
}

func TestBuildPolicyUnknownCommand(t *testing.T) {
	_, err := BuildPolicy("public", "t", "bad", "PERMISSIVE", "x", "true", "")
	require.Error(t, err)
}
