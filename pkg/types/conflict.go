package types

// Conflict reports two policies on the same table pulling in opposite
// directions for a matching command.
type Conflict struct {
	Type        string   `yaml:"type" json:"type"`
	Severity    Severity `yaml:"severity" json:"severity"`
	Policies    []string `yaml:"policies" json:"policies"`
	Description string   `yaml:"description" json:"description"`
	Resolution  string   `yaml:"resolution,omitempty" json:"resolution,omitempty"`
}

// Overlap reports two policies whose expressions cover the same rows.
type Overlap struct {
	Policies    []string `yaml:"policies" json:"policies"`
	Kind        string   `yaml:"kind" json:"kind"`
	Redundancy  string   `yaml:"redundancy" json:"redundancy"`
	Description string   `yaml:"description" json:"description"`
}

// Gap reports an operation no policy in the analyzed set covers.
type Gap struct {
	Scenario    string   `yaml:"scenario" json:"scenario"`
	Risk        Severity `yaml:"risk" json:"risk"`
	Description string   `yaml:"description" json:"description"`
	Suggestion  string   `yaml:"suggestion,omitempty" json:"suggestion,omitempty"`
}

// ConflictReport is the pairwise conflict/overlap/gap analysis over a set
// of policies attached to one table. Scoped to a single detection call.
type ConflictReport struct {
	Conflicts       []Conflict `yaml:"conflicts,omitempty" json:"conflicts,omitempty"`
	Overlaps        []Overlap  `yaml:"overlaps,omitempty" json:"overlaps,omitempty"`
	Gaps            []Gap      `yaml:"gaps,omitempty" json:"gaps,omitempty"`
	Recommendations []string   `yaml:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// Clean reports whether the set analysis found nothing to flag.
func (r *ConflictReport) Clean() bool {
	return len(r.Conflicts) == 0 && len(r.Overlaps) == 0 && len(r.Gaps) == 0
}
