package analyzer

import (
	"fmt"

	"github.com/nsxbet/rls-analyzer/pkg/parser"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// Factor weights and caps. Four additive, independently capped factors;
// changing these shifts every classification downstream.
const (
	depthWeight, depthCap       = 5, 30
	dependencyWeight, depCap    = 3, 20
	logicalOpWeight, logicalCap = 2, 15
	functionWeight, functionCap = 4, 20
)

// Complexity scores the AST and dependency list into a maintainability and
// testability classification. Score is clamped to [1, 100].
func Complexity(root parser.Node, deps []types.Dependency) types.Complexity {
	depth := parser.Depth(root)
	logicalOps := parser.Count(root, parser.KindLogical)
	functionCalls := parser.Count(root, parser.KindFunction)

	score := capped(depth*depthWeight, depthCap) +
		capped(len(deps)*dependencyWeight, depCap) +
		capped(logicalOps*logicalOpWeight, logicalCap) +
		capped(functionCalls*functionWeight, functionCap)
	if score > 100 {
		score = 100
	}
	if score < 1 {
		score = 1
	}

	var factors []string
	if depth > 0 {
		factors = append(factors, fmt.Sprintf("expression depth %d", depth))
	}
	if len(deps) > 0 {
		factors = append(factors, fmt.Sprintf("%d dependencies", len(deps)))
	}
	if logicalOps > 0 {
		factors = append(factors, fmt.Sprintf("%d logical operators", logicalOps))
	}
	if functionCalls > 0 {
		factors = append(factors, fmt.Sprintf("%d function calls", functionCalls))
	}

	return types.Complexity{
		Score:           score,
		Level:           complexityLevel(score),
		Factors:         factors,
		Maintainability: maintainability(score),
		Testability:     testability(score),
	}
}

func capped(value, limit int) int {
	if value > limit {
		return limit
	}
	return value
}

func complexityLevel(score int) types.ComplexityLevel {
	switch {
	case score <= 10:
		return types.ComplexityTrivial
	case score <= 25:
		return types.ComplexitySimple
	case score <= 50:
		return types.ComplexityModerate
	case score <= 75:
		return types.ComplexityComplex
	case score <= 90:
		return types.ComplexityVeryComplex
	default:
		return types.ComplexityExtreme
	}
}

func maintainability(score int) types.Maintainability {
	switch {
	case score <= 30:
		return types.MaintainabilityExcellent
	case score <= 50:
		return types.MaintainabilityGood
	case score <= 70:
		return types.MaintainabilityFair
	case score <= 85:
		return types.MaintainabilityPoor
	default:
		return types.MaintainabilityVeryPoor
	}
}

func testability(score int) types.Testability {
	switch {
	case score <= 20:
		return types.TestabilityEasy
	case score <= 40:
		return types.TestabilityModerate
	case score <= 70:
		return types.TestabilityDifficult
	default:
		return types.TestabilityVeryDifficult
	}
}
