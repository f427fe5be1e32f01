// Package parser turns the raw USING / WITH CHECK clause of a Postgres
// row-level-security policy into an abstract syntax tree.
//
// The grammar is deliberately small: boolean combinations of comparisons,
// function calls, column references, and literals, with a shallow
// representation of subqueries. It is not a general SQL parser.
package parser

import "encoding/json"

// NodeKind tags the variant of a condition node.
type NodeKind int

const (
	KindComparison NodeKind = iota
	KindLogical
	KindFunction
	KindColumn
	KindLiteral
	KindSubquery
)

// String returns the lowercase variant name.
func (k NodeKind) String() string {
	switch k {
	case KindComparison:
		return "comparison"
	case KindLogical:
		return "logical"
	case KindFunction:
		return "function"
	case KindColumn:
		return "column"
	case KindLiteral:
		return "literal"
	case KindSubquery:
		return "subquery"
	default:
		return "unknown"
	}
}

// Node is one condition in a parsed policy expression. The concrete type
// is one of ComparisonNode, LogicalNode, FunctionNode, ColumnNode,
// LiteralNode, or SubqueryNode; ownership is exclusive and tree-shaped.
type Node interface {
	Kind() NodeKind
}

// ComparisonNode applies a comparison operator to two operands.
type ComparisonNode struct {
	Operator string `json:"operator"`
	Left     Node   `json:"left,omitempty"`
	Right    Node   `json:"right,omitempty"`
}

func (*ComparisonNode) Kind() NodeKind { return KindComparison }

// LogicalNode combines conditions with AND / OR, or negates one with NOT.
// For NOT the operand is held in Left and Right is nil.
type LogicalNode struct {
	Operator string `json:"operator"`
	Left     Node   `json:"left,omitempty"`
	Right    Node   `json:"right,omitempty"`
}

func (*LogicalNode) Kind() NodeKind { return KindLogical }

// FunctionNode is a call such as auth.uid() with an ordered argument list.
type FunctionNode struct {
	Name string `json:"name"`
	Args []Node `json:"args,omitempty"`
}

func (*FunctionNode) Kind() NodeKind { return KindFunction }

// ColumnNode references a column of the policy's table. Unrecognized bare
// words fall through to this variant rather than erroring.
type ColumnNode struct {
	Name string `json:"name"`
}

func (*ColumnNode) Kind() NodeKind { return KindColumn }

// LiteralType distinguishes literal node values.
type LiteralType string

const (
	LiteralString  LiteralType = "string"
	LiteralNumber  LiteralType = "number"
	LiteralBoolean LiteralType = "boolean"
)

// LiteralNode holds a string, number, or boolean literal. Value is stored
// without quote delimiters.
type LiteralNode struct {
	Value string      `json:"value"`
	Type  LiteralType `json:"type"`
}

func (*LiteralNode) Kind() NodeKind { return KindLiteral }

// SubqueryNode wraps a parenthesized SELECT. Raw is the full text between
// the parentheses; Query, if present, is the shallow decomposition.
type SubqueryNode struct {
	Raw   string    `json:"raw"`
	Query *Subquery `json:"query,omitempty"`
}

func (*SubqueryNode) Kind() NodeKind { return KindSubquery }

// Subquery is a shallow decomposition of a nested SELECT. The select,
// from, and join lists are kept as raw text; only the WHERE clause is
// itself parsed, which bounds the recursive nesting.
type Subquery struct {
	SelectList []string `json:"select_list,omitempty"`
	FromList   []string `json:"from_list,omitempty"`
	Where      Node     `json:"where,omitempty"`
	Joins      []string `json:"joins,omitempty"`
}

// Walk traverses the tree rooted at n in depth-first preorder, calling fn
// for every node. If fn returns false the node's children are skipped.
// All analysis passes share this traversal instead of re-walking by hand.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *ComparisonNode:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *LogicalNode:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *FunctionNode:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *SubqueryNode:
		if n.Query != nil {
			Walk(n.Query.Where, fn)
		}
	}
}

// Depth returns the height of the tree rooted at n; a leaf has depth 1.
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	max := 0
	children := func(ns ...Node) {
		for _, c := range ns {
			if d := Depth(c); d > max {
				max = d
			}
		}
	}
	switch n := n.(type) {
	case *ComparisonNode:
		children(n.Left, n.Right)
	case *LogicalNode:
		children(n.Left, n.Right)
	case *FunctionNode:
		children(n.Args...)
	case *SubqueryNode:
		if n.Query != nil {
			children(n.Query.Where)
		}
	}
	return max + 1
}

// Count returns the number of nodes of the given kind in the tree.
func Count(n Node, kind NodeKind) int {
	total := 0
	Walk(n, func(node Node) bool {
		if node.Kind() == kind {
			total++
		}
		return true
	})
	return total
}

// The variants marshal with an explicit kind discriminator so downstream
// consumers can tell them apart after round-tripping through JSON.

func (n *ComparisonNode) MarshalJSON() ([]byte, error) {
	type alias ComparisonNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{n.Kind().String(), (*alias)(n)})
}

func (n *LogicalNode) MarshalJSON() ([]byte, error) {
	type alias LogicalNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{n.Kind().String(), (*alias)(n)})
}

func (n *FunctionNode) MarshalJSON() ([]byte, error) {
	type alias FunctionNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{n.Kind().String(), (*alias)(n)})
}

func (n *ColumnNode) MarshalJSON() ([]byte, error) {
	type alias ColumnNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{n.Kind().String(), (*alias)(n)})
}

func (n *LiteralNode) MarshalJSON() ([]byte, error) {
	type alias LiteralNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{n.Kind().String(), (*alias)(n)})
}

func (n *SubqueryNode) MarshalJSON() ([]byte, error) {
	type alias SubqueryNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{n.Kind().String(), (*alias)(n)})
}
