// Package pkg provides parsing and static analysis for Postgres
// row-level-security policies.
//
// # Package Structure
//
//   - rls: high-level API for policy analysis (recommended starting point)
//   - parser: tokenizer, recursive-descent parser, and condition AST
//   - analyzer: dependency, complexity, security, and performance passes
//   - conflict: pairwise conflict/overlap/gap detection over policy sets
//   - source: pg_policies fetching from a live database
//   - types: plain-data result structures
//   - config: analyzer configuration loading
//   - logger: logging abstraction layer
//
// # Getting Started
//
// For most use cases, start with the rls package:
//
//	import (
//	    "github.com/nsxbet/rls-analyzer/pkg/rls"
//	    "github.com/nsxbet/rls-analyzer/pkg/types"
//	)
//
//	func main() {
//	    a := rls.New()
//	    report := a.AnalyzeSet(policies)
//	    // Process report...
//	}
//
// # Error Handling
//
// ParsePolicy never returns an error: a malformed expression yields a
// structurally valid fallback result carrying a parse-failure finding, so
// every input can still be rendered or logged. Functions that do I/O
// (config loading, database fetching) return errors normally.
//
// # Thread Safety
//
// All analysis APIs are safe for concurrent use; results are immutable
// once returned.
package pkg
