// Package conflict performs pairwise conflict, overlap, and gap analysis
// across the row-level-security policies attached to one table.
//
// The comparison is O(n²) over the policy count, which is fine for the
// policy sets Postgres tables carry in practice (usually well under 20).
package conflict

import (
	"fmt"

	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// Detect compares every unordered pair of policies whose commands overlap
// and runs the set-wide coverage gap check. Policies that failed to parse
// still participate; detection only reads name, command, kind, and raw
// expression text.
func Detect(policies []types.Policy) *types.ConflictReport {
	report := &types.ConflictReport{}

	for i := 0; i < len(policies); i++ {
		for j := i + 1; j < len(policies); j++ {
			a, b := policies[i], policies[j]
			if !a.Command.Covers(b.Command) {
				continue
			}
			if a.Kind != b.Kind {
				report.Conflicts = append(report.Conflicts, types.Conflict{
					Type:     "contradictory",
					Severity: types.SeverityMedium,
					Policies: []string{a.Name, b.Name},
					Description: fmt.Sprintf(
						"permissive policy %q and restrictive policy %q both apply to %s; rows must satisfy both combination modes",
						permissiveOf(a, b).Name, restrictiveOf(a, b).Name, commandLabel(a, b)),
					Resolution: "refactor the pair into a single policy with an explicit combined condition",
				})
			}
			if a.Expression == b.Expression && a.Expression != "" {
				report.Overlaps = append(report.Overlaps, types.Overlap{
					Policies:    []string{a.Name, b.Name},
					Kind:        "identical",
					Redundancy:  "complete",
					Description: fmt.Sprintf("policies %q and %q have byte-identical expressions", a.Name, b.Name),
				})
			}
		}
	}

	if gap := deleteGap(policies); gap != nil {
		report.Gaps = append(report.Gaps, *gap)
	}

	for _, c := range report.Conflicts {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("refactor policies %q and %q: %s", c.Policies[0], c.Policies[1], c.Resolution))
	}
	return report
}

// deleteGap flags the absence of any policy covering DELETE across the
// whole set.
func deleteGap(policies []types.Policy) *types.Gap {
	for _, p := range policies {
		if p.Command == types.CommandDelete || p.Command == types.CommandAll {
			return nil
		}
	}
	return &types.Gap{
		Scenario:    "DELETE operations",
		Risk:        types.SeverityMedium,
		Description: "no policy covers DELETE; row removal is either fully blocked or ungoverned depending on table settings",
		Suggestion:  "add an explicit DELETE (or ALL) policy stating the intended rule",
	}
}

func permissiveOf(a, b types.Policy) types.Policy {
	if a.Kind == types.KindPermissive {
		return a
	}
	return b
}

func restrictiveOf(a, b types.Policy) types.Policy {
	if a.Kind == types.KindRestrictive {
		return a
	}
	return b
}

func commandLabel(a, b types.Policy) string {
	if a.Command == b.Command {
		return string(a.Command)
	}
	return fmt.Sprintf("%s/%s", a.Command, b.Command)
}
