package types

import (
	"strings"

	"github.com/pkg/errors"
)

// PolicyCommand is the SQL command a row-level-security policy applies to.
type PolicyCommand string

const (
	CommandSelect PolicyCommand = "SELECT"
	CommandInsert PolicyCommand = "INSERT"
	CommandUpdate PolicyCommand = "UPDATE"
	CommandDelete PolicyCommand = "DELETE"
	CommandAll    PolicyCommand = "ALL"
)

// ParsePolicyCommand parses a command name as found in pg_policies.cmd.
func ParsePolicyCommand(s string) (PolicyCommand, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELECT", "R":
		return CommandSelect, nil
	case "INSERT", "A":
		return CommandInsert, nil
	case "UPDATE", "W":
		return CommandUpdate, nil
	case "DELETE", "D":
		return CommandDelete, nil
	case "ALL", "*":
		return CommandAll, nil
	}
	return "", errors.Errorf("unknown policy command: %q", s)
}

// Covers reports whether a policy for this command applies to queries of
// the other command. ALL covers everything.
func (c PolicyCommand) Covers(other PolicyCommand) bool {
	return c == other || c == CommandAll || other == CommandAll
}

// UnmarshalYAML accepts lowercase and uppercase command names.
func (c *PolicyCommand) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	cmd, err := ParsePolicyCommand(s)
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

// PolicyKind is the combination mode of a policy. PERMISSIVE policies are
// OR-combined by Postgres, RESTRICTIVE policies are AND-combined.
type PolicyKind string

const (
	KindPermissive  PolicyKind = "PERMISSIVE"
	KindRestrictive PolicyKind = "RESTRICTIVE"
)

// UnmarshalYAML accepts lowercase and uppercase kind names.
func (k *PolicyKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PERMISSIVE", "":
		*k = KindPermissive
	case "RESTRICTIVE":
		*k = KindRestrictive
	default:
		return errors.Errorf("unknown policy kind: %q", s)
	}
	return nil
}

// Policy is one row-level-security policy as stored by Postgres. Expression
// is the raw USING or WITH CHECK clause text (pg_policies.qual /
// pg_policies.with_check); fetching it is the caller's concern.
type Policy struct {
	Name       string        `yaml:"name" json:"name"`
	Schema     string        `yaml:"schema,omitempty" json:"schema,omitempty"`
	Table      string        `yaml:"table,omitempty" json:"table,omitempty"`
	Command    PolicyCommand `yaml:"command" json:"command"`
	Kind       PolicyKind    `yaml:"kind" json:"kind"`
	Expression string        `yaml:"expression" json:"expression"`
}
