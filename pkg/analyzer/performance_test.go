package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/rls-analyzer/pkg/types"
)

func TestPerformanceOwnershipPolicy(t *testing.T) {
	expr := "auth.uid() = user_id"
	root := mustParse(t, expr)
	deps := Dependencies(root, expr)

	res := Performance(root, deps)

	// base 5 + one function call (10) + 2 per dependency (3 deps).
	assert.Equal(t, float64(21), res.EstimatedOverhead)
	assert.Equal(t, types.ImpactLow, res.Impact)

	require.Len(t, res.Bottlenecks, 1)
	assert.Equal(t, "function_call", res.Bottlenecks[0].Type)
	assert.Equal(t, types.SeverityMedium, res.Bottlenecks[0].Impact)

	require.Len(t, res.IndexRecommendations, 1)
	assert.Equal(t, "user_id", res.IndexRecommendations[0].Column)
	assert.Equal(t, "btree", res.IndexRecommendations[0].Type)
}

func TestPerformanceExistsSubquery(t *testing.T) {
	expr := "EXISTS (SELECT 1 FROM memberships WHERE owner = auth.uid())"
	root := mustParse(t, expr)
	deps := Dependencies(root, expr)

	res := Performance(root, deps)

	// EXISTS counts once; its subquery argument is not double-counted.
	require.Len(t, res.Bottlenecks, 1)
	assert.Equal(t, "subquery", res.Bottlenecks[0].Type)
	assert.Equal(t, types.SeverityHigh, res.Bottlenecks[0].Impact)
	assert.Contains(t, res.Optimizations, "rewrite the subquery as a JOIN where possible")

	// base 5 + subquery (25) + 2 per dependency (4 deps).
	assert.Equal(t, float64(38), res.EstimatedOverhead)
	assert.Equal(t, types.ImpactModerate, res.Impact)
}

func TestPerformanceInSubqueryComparison(t *testing.T) {
	expr := "org_id IN (SELECT org_id FROM members)"
	root := mustParse(t, expr)
	res := Performance(root, Dependencies(root, expr))

	require.Len(t, res.Bottlenecks, 1)
	assert.Equal(t, "subquery", res.Bottlenecks[0].Type)
}

func TestPerformanceBareLiteral(t *testing.T) {
	root := mustParse(t, "true")
	res := Performance(root, nil)

	assert.Empty(t, res.Bottlenecks)
	assert.Empty(t, res.IndexRecommendations)
	assert.Equal(t, float64(rlsBaseOverhead), res.EstimatedOverhead)
	assert.Equal(t, types.ImpactMinimal, res.Impact)
}

func TestPerformanceFunctionsInsideSubqueryNotPruned(t *testing.T) {
	// A subquery reached through a comparison still reports the functions
	// in its WHERE clause.
	expr := "org_id IN (SELECT org_id FROM members WHERE lower(name) = 'x')"
	root := mustParse(t, expr)
	res := Performance(root, nil)

	typeCounts := map[string]int{}
	for _, b := range res.Bottlenecks {
		typeCounts[b.Type]++
	}
	assert.Equal(t, 1, typeCounts["subquery"])
	assert.Equal(t, 1, typeCounts["function_call"])
}

func TestPerformanceOverheadCap(t *testing.T) {
	expr := "a IN (SELECT x FROM t) AND b IN (SELECT x FROM t) AND c IN (SELECT x FROM t) AND " +
		"d IN (SELECT x FROM t) AND e IN (SELECT x FROM t) AND f IN (SELECT x FROM t) AND " +
		"g IN (SELECT x FROM t) AND h IN (SELECT x FROM t) AND i IN (SELECT x FROM t)"
	root := mustParse(t, expr)
	deps := Dependencies(root, expr)

	res := Performance(root, deps)
	assert.Equal(t, float64(200), res.EstimatedOverhead)
	assert.Equal(t, types.ImpactSevere, res.Impact)
}

func TestImpactLevels(t *testing.T) {
	tests := []struct {
		score int
		want  types.ImpactLevel
	}{
		{4, types.ImpactNegligible},
		{5, types.ImpactMinimal},
		{14, types.ImpactMinimal},
		{15, types.ImpactLow},
		{29, types.ImpactLow},
		{30, types.ImpactModerate},
		{44, types.ImpactModerate},
		{45, types.ImpactHigh},
		{59, types.ImpactHigh},
		{60, types.ImpactSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, impactLevel(tt.score), "score %d", tt.score)
	}
}
