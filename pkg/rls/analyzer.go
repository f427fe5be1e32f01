// Package rls provides a high-level API for parsing and analyzing
// Postgres row-level-security policies.
//
// # Quick Start
//
//	a := rls.New()
//	parsed := a.ParsePolicy(types.Policy{
//	    Name:       "tenant_isolation",
//	    Command:    types.CommandSelect,
//	    Kind:       types.KindPermissive,
//	    Expression: "auth.uid() = user_id",
//	})
//	fmt.Println(parsed.Security.Strength, parsed.Complexity.Level)
//
// # Analyzing a Policy Set
//
//	report := a.AnalyzeSet(policies)
//	if report.HasCritical() {
//	    os.Exit(1)
//	}
//
// ParsePolicy never fails: malformed expressions yield a structurally
// valid fallback result flagged as unparseable, so every input can still
// be rendered or logged. An Analyzer is safe for concurrent use.
package rls

import (
	"log/slog"

	"github.com/nsxbet/rls-analyzer/pkg/analyzer"
	"github.com/nsxbet/rls-analyzer/pkg/conflict"
	"github.com/nsxbet/rls-analyzer/pkg/config"
	"github.com/nsxbet/rls-analyzer/pkg/parser"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// ParsedPolicyCondition is the aggregate analysis of one policy. It is
// created once per ParsePolicy call and never mutated afterwards.
type ParsedPolicyCondition struct {
	Policy       types.Policy              `yaml:"policy" json:"policy"`
	Expression   string                    `yaml:"expression" json:"expression"`
	Conditions   []parser.Node             `yaml:"-" json:"conditions,omitempty"`
	Dependencies []types.Dependency        `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Complexity   types.Complexity          `yaml:"complexity" json:"complexity"`
	Security     types.SecurityAnalysis    `yaml:"security" json:"security"`
	Performance  types.PerformanceAnalysis `yaml:"performance" json:"performance"`
}

// Analyzer runs the full analysis pipeline. The zero-option Analyzer uses
// the built-in security rule table and the default logger.
type Analyzer struct {
	security *analyzer.SecurityAnalyzer
	log      *slog.Logger
}

// Option customizes an Analyzer.
type Option func(*options)

type options struct {
	log         *slog.Logger
	securityOps []analyzer.SecurityOption
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSecurityOptions customizes the security pattern rule table.
func WithSecurityOptions(opts ...analyzer.SecurityOption) Option {
	return func(o *options) { o.securityOps = append(o.securityOps, opts...) }
}

// WithConfig applies a loaded configuration: disabled checks and severity
// overrides for the security rule table.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		for _, name := range cfg.DisabledChecks {
			o.securityOps = append(o.securityOps, analyzer.WithoutRule(name))
		}
		for name, severity := range cfg.SeverityOverrides {
			o.securityOps = append(o.securityOps, analyzer.WithSeverityOverride(name, severity))
		}
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	o := &options{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return &Analyzer{
		security: analyzer.NewSecurityAnalyzer(o.securityOps...),
		log:      o.log,
	}
}

// ParsePolicy parses one policy expression and runs all four analysis
// passes. It never returns an error: a malformed expression yields the
// fallback analysis instead.
func (a *Analyzer) ParsePolicy(p types.Policy) *ParsedPolicyCondition {
	normalized := parser.Normalize(p.Expression)
	root, err := parser.Parse(p.Expression)
	if err != nil {
		a.log.Debug("policy expression failed to parse, using fallback analysis",
			"policy", p.Name, "error", err)
		return a.fallback(p, normalized, err)
	}

	deps := analyzer.Dependencies(root, normalized)
	return &ParsedPolicyCondition{
		Policy:       p,
		Expression:   normalized,
		Conditions:   []parser.Node{root},
		Dependencies: deps,
		Complexity:   analyzer.Complexity(root, deps),
		Security:     a.security.Analyze(normalized, root),
		Performance:  analyzer.Performance(root, deps),
	}
}

// fallback substitutes a structurally valid worst-case result for an
// unparseable expression.
func (a *Analyzer) fallback(p types.Policy, normalized string, parseErr error) *ParsedPolicyCondition {
	return &ParsedPolicyCondition{
		Policy:     p,
		Expression: normalized,
		Complexity: types.Complexity{
			Score:           100,
			Level:           types.ComplexityExtreme,
			Factors:         []string{"expression could not be parsed"},
			Maintainability: types.MaintainabilityVeryPoor,
			Testability:     types.TestabilityVeryDifficult,
		},
		Security: types.SecurityAnalysis{
			Strength: types.StrengthVeryWeak,
			Score:    0,
			Vulnerabilities: []types.Vulnerability{{
				Type:           "parse_failure",
				Severity:       types.SeverityHigh,
				Description:    "expression could not be parsed: " + parseErr.Error(),
				Recommendation: "fix the expression syntax so the policy can be analyzed",
			}},
			Recommendations: []string{"fix the expression syntax so the policy can be analyzed"},
		},
		Performance: types.PerformanceAnalysis{
			Impact:            types.ImpactHigh,
			EstimatedOverhead: 100,
		},
	}
}

// DetectConflicts runs pairwise conflict/overlap detection and the
// coverage gap check over a policy set, without per-policy analysis.
func (a *Analyzer) DetectConflicts(policies []types.Policy) *types.ConflictReport {
	return conflict.Detect(policies)
}
