// Package analyzer implements the static analysis passes that run over a
// parsed policy condition: dependency extraction, complexity scoring,
// security-risk assessment, and performance-impact estimation. Every pass
// is a pure function of the AST and the normalized expression text.
package analyzer

import (
	"strings"

	"github.com/nsxbet/rls-analyzer/pkg/parser"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

// securitySensitiveFunctions gate row visibility on the caller's identity
// or privileges; referencing one is itself a security implication.
var securitySensitiveFunctions = map[string]bool{
	"auth.uid":             true,
	"auth.jwt":             true,
	"auth.role":            true,
	"current_role":         true,
	"current_user":         true,
	"session_user":         true,
	"current_setting":      true,
	"has_table_privilege":  true,
	"has_schema_privilege": true,
	"pg_has_role":          true,
}

// roleFunctions is scanned against the raw text; role references can sit
// inside subqueries the shallow parser does not resolve.
var roleFunctions = []string{"current_role", "current_user", "session_user"}

type depCollector struct {
	deps []types.Dependency
	seen map[string]bool
}

func (c *depCollector) add(d types.Dependency) {
	key := string(d.Type) + ":" + d.Name
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.deps = append(c.deps, d)
}

// Dependencies walks the AST depth-first collecting column and function
// references, then scans the raw expression text for session-variable and
// role references the AST does not explicitly model. Results are
// deduplicated by (type, name) and ordered deterministically.
func Dependencies(root parser.Node, expression string) []types.Dependency {
	c := &depCollector{seen: make(map[string]bool)}

	parser.Walk(root, func(n parser.Node) bool {
		switch n := n.(type) {
		case *parser.ColumnNode:
			c.add(types.Dependency{
				Type:                 types.DependencyColumn,
				Name:                 n.Name,
				Required:             true,
				SecurityImplications: columnImplications(n.Name),
			})
		case *parser.FunctionNode:
			c.add(types.Dependency{
				Type:                 types.DependencyFunction,
				Name:                 n.Name,
				Required:             true,
				SecurityImplications: functionImplications(n.Name),
			})
		}
		return true
	})

	lower := strings.ToLower(expression)
	if strings.Contains(lower, "auth.uid()") {
		c.add(types.Dependency{
			Type:                 types.DependencySessionVariable,
			Name:                 "auth.uid",
			Required:             true,
			SecurityImplications: []string{"ties row visibility to the authenticated user id"},
		})
	}
	for _, fn := range roleFunctions {
		if strings.Contains(lower, fn) {
			c.add(types.Dependency{
				Type:                 types.DependencyRole,
				Name:                 fn,
				Required:             true,
				SecurityImplications: []string{"row access depends on the current database role"},
			})
		}
	}

	return c.deps
}

func columnImplications(name string) []string {
	var implications []string
	lower := strings.ToLower(name)
	if strings.Contains(lower, "id") {
		implications = append(implications, "identifier column drives row visibility")
	}
	if strings.Contains(lower, "user") || strings.Contains(lower, "account") {
		implications = append(implications, "references user ownership data")
	}
	if strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
		implications = append(implications, "policy references sensitive credential data")
	}
	return implications
}

func functionImplications(name string) []string {
	if securitySensitiveFunctions[strings.ToLower(name)] {
		return []string{"security-sensitive function controls row access"}
	}
	return nil
}
