// Package types holds the plain-data result structures produced by the
// RLS policy analyzer. Every structure here is trivially JSON- and
// YAML-serializable and is never mutated after creation.
package types

// Severity grades a single finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank orders severities for comparisons; higher is worse.
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// DependencyType classifies what a policy expression references.
type DependencyType string

const (
	DependencyTable           DependencyType = "table"
	DependencyColumn          DependencyType = "column"
	DependencyFunction        DependencyType = "function"
	DependencyRole            DependencyType = "role"
	DependencySessionVariable DependencyType = "session_variable"
)

// Dependency is one deduplicated reference extracted from a policy
// expression. No two dependencies in one result share (Type, Name).
type Dependency struct {
	Type                 DependencyType `yaml:"type" json:"type"`
	Name                 string         `yaml:"name" json:"name"`
	Required             bool           `yaml:"required" json:"required"`
	SecurityImplications []string       `yaml:"security_implications,omitempty" json:"security_implications,omitempty"`
}

// ComplexityLevel buckets a complexity score.
type ComplexityLevel string

const (
	ComplexityTrivial     ComplexityLevel = "trivial"
	ComplexitySimple      ComplexityLevel = "simple"
	ComplexityModerate    ComplexityLevel = "moderate"
	ComplexityComplex     ComplexityLevel = "complex"
	ComplexityVeryComplex ComplexityLevel = "very_complex"
	ComplexityExtreme     ComplexityLevel = "extreme"
)

// Maintainability rates how hard a policy is to keep correct over time.
type Maintainability string

const (
	MaintainabilityExcellent Maintainability = "excellent"
	MaintainabilityGood      Maintainability = "good"
	MaintainabilityFair      Maintainability = "fair"
	MaintainabilityPoor      Maintainability = "poor"
	MaintainabilityVeryPoor  Maintainability = "very_poor"
)

// Testability rates how hard a policy is to cover with tests.
type Testability string

const (
	TestabilityEasy          Testability = "easy"
	TestabilityModerate      Testability = "moderate"
	TestabilityDifficult     Testability = "difficult"
	TestabilityVeryDifficult Testability = "very_difficult"
)

// Complexity is the maintainability/testability classification of one
// parsed expression. Score is in [1, 100].
type Complexity struct {
	Score           int             `yaml:"score" json:"score"`
	Level           ComplexityLevel `yaml:"level" json:"level"`
	Factors         []string        `yaml:"factors,omitempty" json:"factors,omitempty"`
	Maintainability Maintainability `yaml:"maintainability" json:"maintainability"`
	Testability     Testability     `yaml:"testability" json:"testability"`
}

// Strength buckets a security score.
type Strength string

const (
	StrengthExcellent  Strength = "excellent"
	StrengthVeryStrong Strength = "very_strong"
	StrengthStrong     Strength = "strong"
	StrengthModerate   Strength = "moderate"
	StrengthWeak       Strength = "weak"
	StrengthVeryWeak   Strength = "very_weak"
)

// Vulnerability is one heuristic security finding.
type Vulnerability struct {
	Type           string   `yaml:"type" json:"type"`
	Severity       Severity `yaml:"severity" json:"severity"`
	Description    string   `yaml:"description" json:"description"`
	Recommendation string   `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
}

// BypassRisk describes a pattern that could let a caller evade the policy.
type BypassRisk struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Likelihood  string `yaml:"likelihood" json:"likelihood"`
	Impact      string `yaml:"impact" json:"impact"`
	Description string `yaml:"description" json:"description"`
}

// SecurityAnalysis is the combined result of the pattern scan and the
// bypass heuristics. Findings are advisory, not a soundness proof.
type SecurityAnalysis struct {
	Strength        Strength        `yaml:"strength" json:"strength"`
	Score           int             `yaml:"score" json:"score"`
	Vulnerabilities []Vulnerability `yaml:"vulnerabilities,omitempty" json:"vulnerabilities,omitempty"`
	BypassRisks     []BypassRisk    `yaml:"bypass_risks,omitempty" json:"bypass_risks,omitempty"`
	InjectionRisks  []string        `yaml:"injection_risks,omitempty" json:"injection_risks,omitempty"`
	Recommendations []string        `yaml:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// ImpactLevel buckets an estimated performance impact.
type ImpactLevel string

const (
	ImpactNegligible ImpactLevel = "negligible"
	ImpactMinimal    ImpactLevel = "minimal"
	ImpactLow        ImpactLevel = "low"
	ImpactModerate   ImpactLevel = "moderate"
	ImpactHigh       ImpactLevel = "high"
	ImpactSevere     ImpactLevel = "severe"
)

// Bottleneck is a structural pattern expected to add per-row cost.
type Bottleneck struct {
	Type        string   `yaml:"type" json:"type"`
	Impact      Severity `yaml:"impact" json:"impact"`
	Description string   `yaml:"description" json:"description"`
}

// IndexRecommendation suggests an index that would speed up policy checks.
type IndexRecommendation struct {
	Column   string `yaml:"column" json:"column"`
	Type     string `yaml:"type" json:"type"`
	Priority string `yaml:"priority" json:"priority"`
	Reason   string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// PerformanceAnalysis estimates the runtime cost of enforcing a policy.
// EstimatedOverhead is a percentage in [0, 200].
type PerformanceAnalysis struct {
	Impact               ImpactLevel           `yaml:"impact" json:"impact"`
	EstimatedOverhead    float64               `yaml:"estimated_overhead" json:"estimated_overhead"`
	Bottlenecks          []Bottleneck          `yaml:"bottlenecks,omitempty" json:"bottlenecks,omitempty"`
	Optimizations        []string              `yaml:"optimizations,omitempty" json:"optimizations,omitempty"`
	IndexRecommendations []IndexRecommendation `yaml:"index_recommendations,omitempty" json:"index_recommendations,omitempty"`
}
