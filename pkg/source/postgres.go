// Package source fetches row-level-security policies from a live Postgres
// database via the pg_policies catalog view. The analyzer itself never
// touches a database; this is the collaborator that feeds it.
package source

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx driver
	"github.com/pkg/errors"

	"github.com/nsxbet/rls-analyzer/pkg/types"
)

const policyQuery = `SELECT schemaname, tablename, policyname, permissive, cmd,
       COALESCE(qual, ''), COALESCE(with_check, '')
FROM pg_policies`

// Querier is the subset of *sql.DB the source needs. It lets callers pass
// a shared pool or a transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Source reads policies from one database connection.
type Source struct {
	db Querier
}

// Open connects to a Postgres database and returns a Source together with
// a close function for the underlying pool.
func Open(dsn string) (*Source, func() error, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open database")
	}
	return &Source{db: db}, db.Close, nil
}

// New wraps an existing connection.
func New(db Querier) *Source {
	return &Source{db: db}
}

// Policies fetches all policies, or only those of one table when table is
// non-empty. The returned expressions are the raw USING clause text, with
// WITH CHECK as the fallback for policies that have no USING clause.
func (s *Source) Policies(ctx context.Context, table string) ([]types.Policy, error) {
	query := policyQuery + " ORDER BY schemaname, tablename, policyname"
	var args []any
	if table != "" {
		query = policyQuery + " WHERE tablename = $1 ORDER BY schemaname, policyname"
		args = append(args, table)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query pg_policies")
	}
	defer rows.Close()

	var policies []types.Policy
	for rows.Next() {
		var schema, tbl, name, permissive, cmd, qual, withCheck string
		if err := rows.Scan(&schema, &tbl, &name, &permissive, &cmd, &qual, &withCheck); err != nil {
			return nil, errors.Wrap(err, "failed to scan pg_policies row")
		}
		policy, err := BuildPolicy(schema, tbl, name, permissive, cmd, qual, withCheck)
		if err != nil {
			return nil, errors.Wrapf(err, "policy %q on table %q", name, tbl)
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read pg_policies rows")
	}
	return policies, nil
}

// BuildPolicy maps one pg_policies row onto the analyzer's policy type.
func BuildPolicy(schema, table, name, permissive, cmd, qual, withCheck string) (types.Policy, error) {
	command, err := types.ParsePolicyCommand(cmd)
	if err != nil {
		return types.Policy{}, err
	}
	kind := types.KindPermissive
	if strings.EqualFold(permissive, "RESTRICTIVE") {
		kind = types.KindRestrictive
	}
	expression := qual
	if expression == "" {
		expression = withCheck
	}
	return types.Policy{
		Name:       name,
		Schema:     schema,
		Table:      table,
		Command:    command,
		Kind:       kind,
		Expression: expression,
	}, nil
}
