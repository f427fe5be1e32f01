package rls

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nsxbet/rls-analyzer/pkg/conflict"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// SetReport aggregates per-policy analysis and the pairwise conflict
// report for one policy set. ID is a fresh run identifier the reporting
// layer can use to correlate output.
type SetReport struct {
	ID        string                   `yaml:"id" json:"id"`
	Policies  []*ParsedPolicyCondition `yaml:"policies" json:"policies"`
	Conflicts *types.ConflictReport    `yaml:"conflicts" json:"conflicts"`
	Summary   Summary                  `yaml:"summary" json:"summary"`
}

// Summary counts findings across the whole set by severity.
type Summary struct {
	Policies       int `yaml:"policies" json:"policies"`
	Critical       int `yaml:"critical" json:"critical"`
	High           int `yaml:"high" json:"high"`
	Medium         int `yaml:"medium" json:"medium"`
	Low            int `yaml:"low" json:"low"`
	Conflicts      int `yaml:"conflicts" json:"conflicts"`
	Overlaps       int `yaml:"overlaps" json:"overlaps"`
	Gaps           int `yaml:"gaps" json:"gaps"`
	FallbackParses int `yaml:"fallback_parses" json:"fallback_parses"`
}

// AnalyzeSet parses and analyzes every policy, then runs conflict
// detection across the set. Policies that fail to parse still participate
// in the conflict comparison through their raw fields.
func (a *Analyzer) AnalyzeSet(policies []types.Policy) *SetReport {
	report := &SetReport{
		ID:        uuid.NewString(),
		Conflicts: conflict.Detect(policies),
	}
	for _, p := range policies {
		report.Policies = append(report.Policies, a.ParsePolicy(p))
	}
	report.Summary = summarize(report)
	return report
}

func summarize(report *SetReport) Summary {
	s := Summary{
		Policies:  len(report.Policies),
		Conflicts: len(report.Conflicts.Conflicts),
		Overlaps:  len(report.Conflicts.Overlaps),
		Gaps:      len(report.Conflicts.Gaps),
	}
	for _, parsed := range report.Policies {
		for _, v := range parsed.Security.Vulnerabilities {
			switch v.Severity {
			case types.SeverityCritical:
				s.Critical++
			case types.SeverityHigh:
				s.High++
			case types.SeverityMedium:
				s.Medium++
			case types.SeverityLow:
				s.Low++
			}
			if v.Type == "parse_failure" {
				s.FallbackParses++
			}
		}
	}
	return s
}

// HasCritical reports whether any policy carries a critical finding.
func (r *SetReport) HasCritical() bool {
	return r.Summary.Critical > 0
}

// HasHigh reports whether any policy carries a high or critical finding.
func (r *SetReport) HasHigh() bool {
	return r.Summary.Critical > 0 || r.Summary.High > 0
}

// IsClean reports whether neither the per-policy passes nor the set-level
// comparison flagged anything.
func (r *SetReport) IsClean() bool {
	return r.Summary.Critical == 0 && r.Summary.High == 0 &&
		r.Summary.Medium == 0 && r.Summary.Low == 0 &&
		r.Conflicts.Clean()
}

// String returns a one-line human-readable summary.
func (r *SetReport) String() string {
	return fmt.Sprintf(
		"Policy Analysis: %d policies (%d critical, %d high findings; %d conflicts, %d overlaps, %d gaps)",
		r.Summary.Policies, r.Summary.Critical, r.Summary.High,
		r.Summary.Conflicts, r.Summary.Overlaps, r.Summary.Gaps,
	)
}
