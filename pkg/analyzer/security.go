package analyzer

import (
	"regexp"
	"strings"

	"github.com/nsxbet/rls-analyzer/pkg/parser"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// PatternRule is one dangerous-pattern heuristic scanned against the raw
// expression text. Matches are advisory findings, not a soundness proof.
type PatternRule struct {
	Name           string
	Severity       types.Severity
	Pattern        *regexp.Regexp
	Description    string
	Recommendation string
}

// defaultPatternRules is the built-in rule table. New heuristics are added
// here (or via WithRule) without touching the analyzer's control flow.
var defaultPatternRules = []PatternRule{
	{
		Name:           "sql_injection",
		Severity:       types.SeverityCritical,
		Pattern:        regexp.MustCompile(`(?i)\bor\s+'1'\s*=\s*'1'`),
		Description:    "tautological OR '1'='1' disables the condition",
		Recommendation: "remove the tautology and gate access on a trusted identity function",
	},
	{
		Name:           "statement_injection",
		Severity:       types.SeverityCritical,
		Pattern:        regexp.MustCompile(`(?i);\s*(drop|delete|update|insert)\b`),
		Description:    "statement embedded after a semicolon",
		Recommendation: "a policy condition must be a single boolean expression",
	},
	{
		Name:           "dynamic_execution",
		Severity:       types.SeverityCritical,
		Pattern:        regexp.MustCompile(`(?i)\bexecute\b`),
		Description:    "dynamic EXECUTE referenced inside the condition",
		Recommendation: "avoid dynamic SQL in row-level-security policies",
	},
	{
		Name:           "dollar_quoting",
		Severity:       types.SeverityCritical,
		Pattern:        regexp.MustCompile(`\$[a-zA-Z_]*\$`),
		Description:    "dollar-quoted block embedded in the condition",
		Recommendation: "inline the logic as a plain boolean expression",
	},
}

// severityDeductions maps a finding's severity to its score penalty.
var severityDeductions = map[types.Severity]int{
	types.SeverityCritical: 40,
	types.SeverityHigh:     20,
	types.SeverityMedium:   10,
	types.SeverityLow:      5,
}

var orTruePattern = regexp.MustCompile(`(?i)\bor\s+(true\b|1\s*=\s*1)`)

// SecurityAnalyzer runs the pattern scan and the bypass heuristics over
// one policy expression. The zero-config analyzer uses the built-in table.
type SecurityAnalyzer struct {
	rules []PatternRule
}

// SecurityOption customizes the rule table.
type SecurityOption func(*SecurityAnalyzer)

// WithoutRule removes a built-in rule by name.
func WithoutRule(name string) SecurityOption {
	return func(a *SecurityAnalyzer) {
		kept := a.rules[:0]
		for _, r := range a.rules {
			if r.Name != name {
				kept = append(kept, r)
			}
		}
		a.rules = kept
	}
}

// WithSeverityOverride changes the severity (and so the deduction) of a
// rule by name.
func WithSeverityOverride(name string, severity types.Severity) SecurityOption {
	return func(a *SecurityAnalyzer) {
		for i := range a.rules {
			if a.rules[i].Name == name {
				a.rules[i].Severity = severity
			}
		}
	}
}

// WithRule appends a custom pattern rule.
func WithRule(rule PatternRule) SecurityOption {
	return func(a *SecurityAnalyzer) {
		a.rules = append(a.rules, rule)
	}
}

// NewSecurityAnalyzer builds an analyzer from the built-in rule table and
// the given options.
func NewSecurityAnalyzer(opts ...SecurityOption) *SecurityAnalyzer {
	a := &SecurityAnalyzer{rules: append([]PatternRule(nil), defaultPatternRules...)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze combines the raw-text pattern scan with AST bypass heuristics
// into one score starting at 100, then maps it to a strength bucket.
func (a *SecurityAnalyzer) Analyze(expression string, root parser.Node) types.SecurityAnalysis {
	res := types.SecurityAnalysis{}
	score := 100
	lower := strings.ToLower(expression)

	for _, rule := range a.rules {
		if !rule.Pattern.MatchString(expression) {
			continue
		}
		res.Vulnerabilities = append(res.Vulnerabilities, types.Vulnerability{
			Type:           rule.Name,
			Severity:       rule.Severity,
			Description:    rule.Description,
			Recommendation: rule.Recommendation,
		})
		res.InjectionRisks = append(res.InjectionRisks, rule.Description)
		res.Recommendations = appendUnique(res.Recommendations, rule.Recommendation)
		score -= severityDeductions[rule.Severity]
	}

	hasAuthUID := strings.Contains(lower, "auth.uid()")
	hasSessionIdentity := strings.Contains(lower, "current_user") || strings.Contains(lower, "session_user")

	if hasTrueLiteral(root) && !hasAuthUID {
		res.Vulnerabilities = append(res.Vulnerabilities, types.Vulnerability{
			Type:           "data_leak",
			Severity:       types.SeverityHigh,
			Description:    "unconditionally permissive TRUE condition with no identity check",
			Recommendation: "gate the condition on auth.uid() or an equivalent identity function",
		})
		res.Recommendations = appendUnique(res.Recommendations, "gate the condition on auth.uid() or an equivalent identity function")
		score -= severityDeductions[types.SeverityHigh]
	}

	if !hasAuthUID && !strings.Contains(lower, "current_user") {
		res.BypassRisks = append(res.BypassRisks, types.BypassRisk{
			Pattern:     "missing_identity_check",
			Likelihood:  "high",
			Impact:      "high",
			Description: "no auth.uid() or current_user reference; any role passing the condition sees the rows",
		})
		res.Recommendations = appendUnique(res.Recommendations, "anchor the policy to the caller's identity")
		score -= 15
	}
	if orTruePattern.MatchString(expression) {
		res.BypassRisks = append(res.BypassRisks, types.BypassRisk{
			Pattern:     "or_true",
			Likelihood:  "very_high",
			Impact:      "severe",
			Description: "an OR TRUE / OR 1=1 branch makes the whole condition pass",
		})
		score -= 30
	}

	if hasAuthUID {
		score += 10
	}
	if hasSessionIdentity {
		score += 5
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	res.Score = score
	res.Strength = strength(score)
	return res
}

// hasTrueLiteral reports whether the tree contains a boolean TRUE literal,
// the structural form of an unconditionally permissive branch.
func hasTrueLiteral(root parser.Node) bool {
	found := false
	parser.Walk(root, func(n parser.Node) bool {
		if lit, ok := n.(*parser.LiteralNode); ok && lit.Type == parser.LiteralBoolean && lit.Value == "true" {
			found = true
			return false
		}
		return !found
	})
	return found
}

func strength(score int) types.Strength {
	switch {
	case score >= 90:
		return types.StrengthExcellent
	case score >= 75:
		return types.StrengthVeryStrong
	case score >= 60:
		return types.StrengthStrong
	case score >= 40:
		return types.StrengthModerate
	case score >= 20:
		return types.StrengthWeak
	default:
		return types.StrengthVeryWeak
	}
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
