package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleComparison(t *testing.T) {
	root, err := Parse("auth.uid() = user_id")
	require.NoError(t, err)

	cmp, ok := root.(*ComparisonNode)
	require.True(t, ok, "expected comparison at the root")
	assert.Equal(t, "=", cmp.Operator)

	fn, ok := cmp.Left.(*FunctionNode)
	require.True(t, ok)
	assert.Equal(t, "auth.uid", fn.Name)
	assert.Empty(t, fn.Args)

	col, ok := cmp.Right.(*ColumnNode)
	require.True(t, ok)
	assert.Equal(t, "user_id", col.Name)
}

func TestParseOperators(t *testing.T) {
	tests := []struct {
		name string
		expr string
		op   string
	}{
		{"equal", "a = b", "="},
		{"not equal", "a != b", "!="},
		{"angle not equal", "a <> b", "<>"},
		{"less than", "a < b", "<"},
		{"less or equal", "a <= b", "<="},
		{"greater than", "a > b", ">"},
		{"greater or equal", "a >= b", ">="},
		{"like", "a LIKE 'x%'", "LIKE"},
		{"ilike lowercase", "a ilike 'x%'", "ILIKE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.expr)
			require.NoError(t, err)
			cmp, ok := root.(*ComparisonNode)
			require.True(t, ok)
			assert.Equal(t, tt.op, cmp.Operator)
		})
	}
}

func TestParseLogicalPrecedence(t *testing.T) {
	// AND binds tighter than OR: a = 1 OR b = 2 AND c = 3
	root, err := Parse("a = 1 OR b = 2 AND c = 3")
	require.NoError(t, err)

	or, ok := root.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "OR", or.Operator)

	_, ok = or.Left.(*ComparisonNode)
	assert.True(t, ok)

	and, ok := or.Right.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "AND", and.Operator)
}

func TestParseLeftAssociativity(t *testing.T) {
	root, err := Parse("a = 1 AND b = 2 AND c = 3")
	require.NoError(t, err)

	outer, ok := root.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "AND", outer.Operator)

	inner, ok := outer.Left.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "AND", inner.Operator)
	_, ok = outer.Right.(*ComparisonNode)
	assert.True(t, ok)
}

func TestParseNot(t *testing.T) {
	root, err := Parse("NOT deleted = true")
	require.NoError(t, err)

	not, ok := root.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "NOT", not.Operator)
	assert.Nil(t, not.Right)

	cmp, ok := not.Left.(*ComparisonNode)
	require.True(t, ok)
	assert.Equal(t, "=", cmp.Operator)
}

func TestParseParenthesesGrouping(t *testing.T) {
	root, err := Parse("(a = 1 OR b = 2) AND c = 3")
	require.NoError(t, err)

	and, ok := root.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "AND", and.Operator)

	or, ok := and.Left.(*LogicalNode)
	require.True(t, ok)
	assert.Equal(t, "OR", or.Operator)
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		value string
		typ   LiteralType
	}{
		{"string", "role = 'admin'", "admin", LiteralString},
		{"number", "age = 42", "42", LiteralNumber},
		{"boolean true", "active = true", "true", LiteralBoolean},
		{"boolean false", "active = false", "false", LiteralBoolean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.expr)
			require.NoError(t, err)
			cmp, ok := root.(*ComparisonNode)
			require.True(t, ok)
			lit, ok := cmp.Right.(*LiteralNode)
			require.True(t, ok)
			assert.Equal(t, tt.value, lit.Value)
			assert.Equal(t, tt.typ, lit.Type)
		})
	}
}

func TestParseBareBooleanLiteral(t *testing.T) {
	root, err := Parse("true")
	require.NoError(t, err)
	lit, ok := root.(*LiteralNode)
	require.True(t, ok)
	assert.Equal(t, LiteralBoolean, lit.Type)
	assert.Equal(t, "true", lit.Value)
}

func TestParseFunctionArguments(t *testing.T) {
	root, err := Parse("current_setting('app.tenant_id') = tenant_id")
	require.NoError(t, err)

	cmp, ok := root.(*ComparisonNode)
	require.True(t, ok)
	fn, ok := cmp.Left.(*FunctionNode)
	require.True(t, ok)
	assert.Equal(t, "current_setting", fn.Name)
	require.Len(t, fn.Args, 1)
	lit, ok := fn.Args[0].(*LiteralNode)
	require.True(t, ok)
	assert.Equal(t, "app.tenant_id", lit.Value)
}

func TestParseExistsSubquery(t *testing.T) {
	root, err := Parse("EXISTS (SELECT 1 FROM memberships WHERE memberships.user_id = auth.uid())")
	require.NoError(t, err)

	fn, ok := root.(*FunctionNode)
	require.True(t, ok)
	assert.Equal(t, "EXISTS", fn.Name)
	require.Len(t, fn.Args, 1)

	sub, ok := fn.Args[0].(*SubqueryNode)
	require.True(t, ok)
	require.NotNil(t, sub.Query)
	assert.Equal(t, []string{"1"}, sub.Query.SelectList)
	assert.Equal(t, []string{"memberships"}, sub.Query.FromList)
	require.NotNil(t, sub.Query.Where)

	where, ok := sub.Query.Where.(*ComparisonNode)
	require.True(t, ok)
	assert.Equal(t, "=", where.Operator)
}

func TestParseInSubquery(t *testing.T) {
	root, err := Parse("org_id IN (SELECT org_id FROM members WHERE user_id = auth.uid())")
	require.NoError(t, err)

	cmp, ok := root.(*ComparisonNode)
	require.True(t, ok)
	assert.Equal(t, "IN", cmp.Operator)

	sub, ok := cmp.Right.(*SubqueryNode)
	require.True(t, ok)
	require.NotNil(t, sub.Query)
	assert.Equal(t, []string{"org_id"}, sub.Query.SelectList)
	assert.Equal(t, []string{"members"}, sub.Query.FromList)
}

func TestParseSubqueryJoins(t *testing.T) {
	root, err := Parse("EXISTS (SELECT 1 FROM a JOIN b ON a.id = b.a_id WHERE a.owner = auth.uid())")
	require.NoError(t, err)

	fn, ok := root.(*FunctionNode)
	require.True(t, ok)
	sub, ok := fn.Args[0].(*SubqueryNode)
	require.True(t, ok)
	require.NotNil(t, sub.Query)
	assert.Equal(t, []string{"a"}, sub.Query.FromList)
	require.Len(t, sub.Query.Joins, 1)
	assert.Equal(t, "JOIN b ON a.id = b.a_id", sub.Query.Joins[0])
}

func TestParseSubqueryRaw(t *testing.T) {
	root, err := Parse("id IN (SELECT id FROM t)")
	require.NoError(t, err)

	cmp := root.(*ComparisonNode)
	sub, ok := cmp.Right.(*SubqueryNode)
	require.True(t, ok)
	assert.Equal(t, "SELECT id FROM t", sub.Raw)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unmatched open paren", "(a = 1"},
		{"dangling operator", "a ="},
		{"unterminated subquery", "id IN (SELECT id FROM t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestParseUnrecognizedWordBecomesColumn(t *testing.T) {
	root, err := Parse("sometoken = other")
	require.NoError(t, err)
	cmp := root.(*ComparisonNode)
	col, ok := cmp.Left.(*ColumnNode)
	require.True(t, ok)
	assert.Equal(t, "sometoken", col.Name)
}

func TestParseDeterministic(t *testing.T) {
	const expr = "auth.uid() = user_id AND (role = 'admin' OR active = true)"
	first, err := Parse(expr)
	require.NoError(t, err)
	second, err := Parse(expr)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWalkPreorderAndPrune(t *testing.T) {
	root, err := Parse("a = 1 AND b = 2")
	require.NoError(t, err)

	var kinds []NodeKind
	Walk(root, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []NodeKind{
		KindLogical,
		KindComparison, KindColumn, KindLiteral,
		KindComparison, KindColumn, KindLiteral,
	}, kinds)

	// Returning false prunes a node's children.
	visited := 0
	Walk(root, func(n Node) bool {
		visited++
		return n.Kind() != KindComparison
	})
	assert.Equal(t, 3, visited)
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		depth int
	}{
		{"single column", "active", 1},
		{"comparison", "a = 1", 2},
		{"logical over comparisons", "a = 1 AND b = 2", 3},
		{"nested grouping", "(a = 1 AND b = 2) OR c = 3", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.depth, Depth(root))
		})
	}
}

func TestCount(t *testing.T) {
	root, err := Parse("a = 1 AND b = 2 OR NOT c = 3")
	require.NoError(t, err)
	assert.Equal(t, 3, Count(root, KindLogical))
	assert.Equal(t, 3, Count(root, KindComparison))
	assert.Equal(t, 3, Count(root, KindColumn))
	assert.Equal(t, 3, Count(root, KindLiteral))
}

func TestSubqueryDepthLimit(t *testing.T) {
	expr := "id IN "
	for i := 0; i < maxSubqueryDepth+1; i++ {
		expr += "(SELECT id FROM t WHERE id IN "
	}
	expr += "x"
	for i := 0; i < maxSubqueryDepth+1; i++ {
		expr += ")"
	}
	_, err := Parse(expr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting too deep")
}

func TestMarshalJSONKindDiscriminator(t *testing.T) {
	root, err := Parse("auth.uid() = user_id")
	require.NoError(t, err)
	data, err := json.Marshal(root)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"comparison"`)
	assert.Contains(t, string(data), `"kind":"function"`)
	assert.Contains(t, string(data), `"kind":"column"`)
}
