package analyzer

import (
	"fmt"
	"strings"

	"github.com/nsxbet/rls-analyzer/pkg/parser"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// rlsBaseOverhead is the flat cost (in percent) of having any policy on a
// table at all.
const rlsBaseOverhead = 5

// bottleneckWeights score each bottleneck by its impact grade.
var bottleneckWeights = map[types.Severity]int{
	types.SeverityCritical: 50,
	types.SeverityHigh:     25,
	types.SeverityMedium:   10,
	types.SeverityLow:      5,
}

// Performance classifies structural bottlenecks in the AST, recommends
// indexes for referenced columns, and estimates the per-query overhead of
// enforcing the policy as a percentage in [0, 200].
func Performance(root parser.Node, deps []types.Dependency) types.PerformanceAnalysis {
	res := types.PerformanceAnalysis{}

	parser.Walk(root, func(n parser.Node) bool {
		switch n := n.(type) {
		case *parser.FunctionNode:
			upper := strings.ToUpper(n.Name)
			if upper == "EXISTS" || upper == "IN" {
				res.Bottlenecks = append(res.Bottlenecks, types.Bottleneck{
					Type:        "subquery",
					Impact:      types.SeverityHigh,
					Description: fmt.Sprintf("%s commonly forces per-row subquery evaluation", n.Name),
				})
				// A subquery argument is already covered by this finding.
				return false
			}
			res.Bottlenecks = append(res.Bottlenecks, types.Bottleneck{
				Type:        "function_call",
				Impact:      types.SeverityMedium,
				Description: fmt.Sprintf("%s is evaluated for every candidate row", n.Name),
			})
		case *parser.SubqueryNode:
			res.Bottlenecks = append(res.Bottlenecks, types.Bottleneck{
				Type:        "subquery",
				Impact:      types.SeverityHigh,
				Description: "nested SELECT runs once per candidate row unless the planner can flatten it",
			})
		}
		return true
	})

	for _, b := range res.Bottlenecks {
		switch b.Type {
		case "subquery":
			res.Optimizations = appendUnique(res.Optimizations, "rewrite the subquery as a JOIN where possible")
		case "function_call":
			res.Optimizations = appendUnique(res.Optimizations, "cache results of deterministic functions")
		}
	}

	for _, dep := range deps {
		if dep.Type != types.DependencyColumn {
			continue
		}
		res.IndexRecommendations = append(res.IndexRecommendations, types.IndexRecommendation{
			Column:   dep.Name,
			Type:     "btree",
			Priority: "medium",
			Reason:   "the policy filters on this column for every row",
		})
	}

	score := rlsBaseOverhead
	for _, b := range res.Bottlenecks {
		score += bottleneckWeights[b.Impact]
	}
	score += 2 * len(deps)
	if score > 200 {
		score = 200
	}

	res.EstimatedOverhead = float64(score)
	res.Impact = impactLevel(score)
	return res
}

func impactLevel(score int) types.ImpactLevel {
	switch {
	case score >= 60:
		return types.ImpactSevere
	case score >= 45:
		return types.ImpactHigh
	case score >= 30:
		return types.ImpactModerate
	case score >= 15:
		return types.ImpactLow
	case score >= 5:
		return types.ImpactMinimal
	default:
		return types.ImpactNegligible
	}
}
