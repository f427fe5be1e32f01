package parser

import (
	"fmt"
	"strings"
)

// maxSubqueryDepth bounds recursive subquery nesting so a pathological
// expression cannot recurse without limit.
const maxSubqueryDepth = 8

// SyntaxError is a tokenizer/parser error with the byte offset of the
// offending token in the normalized expression.
type SyntaxError struct {
	Message string
	Pos     int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("syntax error: %s", e.Message)
}

// Parse normalizes and parses a policy condition expression into its AST.
//
// The grammar is left-associative for AND/OR:
//
//	expression := orExpr
//	orExpr     := andExpr ( "OR" andExpr )*
//	andExpr    := notExpr ( "AND" notExpr )*
//	notExpr    := "NOT" comparison | comparison
//	comparison := primary ( compOp primary )?
//	primary    := "(" expression ")" | IDENT "(" argList ")" | literal | column
//
// Tokens the grammar does not recognize parse as column references; only
// structural errors (unexpected end of input, unmatched parenthesis) fail.
func Parse(expression string) (Node, error) {
	src := Normalize(expression)
	tokens := Tokenize(src)
	if len(tokens) == 0 {
		return nil, &SyntaxError{Message: "empty expression"}
	}
	p := &parser{tokens: tokens, src: src}
	return p.parseExpression()
}

type parser struct {
	tokens   []Token
	src      string
	pos      int
	subDepth int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// matchWord consumes the next token if it is the given keyword
// (case-insensitive word token).
func (p *parser) matchWord(word string) bool {
	tok, ok := p.peek()
	if ok && tok.Type == TokenWord && strings.EqualFold(tok.Value, word) {
		p.pos++
		return true
	}
	return false
}

// matchSymbol consumes the next token if it is the given symbol.
func (p *parser) matchSymbol(sym string) bool {
	tok, ok := p.peek()
	if ok && tok.Type == TokenSymbol && tok.Value == sym {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errAt(msg string) *SyntaxError {
	pos := 0
	if tok, ok := p.peek(); ok {
		pos = tok.Pos
	} else if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		pos = last.Pos + len(last.Value)
	}
	return &SyntaxError{Message: msg, Pos: pos}
}

func (p *parser) parseExpression() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchWord("OR") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalNode{Operator: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.matchWord("AND") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &LogicalNode{Operator: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.matchWord("NOT") {
		operand, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		return &LogicalNode{Operator: "NOT", Left: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	op, ok := p.comparisonOp()
	if !ok {
		return left, nil
	}
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &ComparisonNode{Operator: op, Left: left, Right: right}, nil
}

// wordOperators are the keyword comparison operators.
var wordOperators = map[string]bool{
	"LIKE":   true,
	"ILIKE":  true,
	"IN":     true,
	"EXISTS": true,
}

// comparisonOp consumes a comparison operator if one is next. Symbol runs
// arrive as single-character tokens, so two-character operators (!=, <>,
// <=, >=) are joined here.
func (p *parser) comparisonOp() (string, bool) {
	tok, ok := p.peek()
	if !ok {
		return "", false
	}
	if tok.Type == TokenWord {
		upper := strings.ToUpper(tok.Value)
		if wordOperators[upper] {
			p.pos++
			return upper, true
		}
		return "", false
	}
	if tok.Type != TokenSymbol {
		return "", false
	}
	switch tok.Value {
	case "=":
		p.pos++
		return "=", true
	case "!":
		p.pos++
		if p.matchSymbol("=") {
			return "!=", true
		}
		p.pos-- // lone "!" is not an operator
		return "", false
	case "<":
		p.pos++
		if p.matchSymbol("=") {
			return "<=", true
		}
		if p.matchSymbol(">") {
			return "<>", true
		}
		return "<", true
	case ">":
		p.pos++
		if p.matchSymbol("=") {
			return ">=", true
		}
		return ">", true
	}
	return "", false
}

func (p *parser) parsePrimary() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.errAt("unexpected end of expression")
	}

	switch tok.Type {
	case TokenSymbol:
		if tok.Value != "(" {
			return nil, p.errAt(fmt.Sprintf("unexpected token %q", tok.Value))
		}
		p.advance()
		if next, ok := p.peek(); ok && next.Type == TokenWord && strings.EqualFold(next.Value, "SELECT") {
			return p.parseSubquery()
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.matchSymbol(")") {
			return nil, p.errAt("unmatched parenthesis")
		}
		return expr, nil

	case TokenQuoted:
		p.advance()
		return &LiteralNode{Value: unquote(tok.Value), Type: LiteralString}, nil

	default:
		p.advance()
		// A word followed immediately by "(" is a function call.
		if next, ok := p.peek(); ok && next.Type == TokenSymbol && next.Value == "(" {
			return p.parseFunctionCall(tok.Value)
		}
		if isDigits(tok.Value) {
			return &LiteralNode{Value: tok.Value, Type: LiteralNumber}, nil
		}
		if tok.Value == "true" || tok.Value == "false" {
			return &LiteralNode{Value: tok.Value, Type: LiteralBoolean}, nil
		}
		return &ColumnNode{Name: tok.Value}, nil
	}
}

// parseFunctionCall parses the argument list of a call whose name token
// has already been consumed. EXISTS (SELECT ...) arrives here too; the
// single paren pair serves as both argument list and subquery delimiter.
func (p *parser) parseFunctionCall(name string) (Node, error) {
	p.advance() // "("
	fn := &FunctionNode{Name: name}
	if p.matchSymbol(")") {
		return fn, nil
	}
	if next, ok := p.peek(); ok && next.Type == TokenWord && strings.EqualFold(next.Value, "SELECT") {
		sub, err := p.parseSubquery()
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, sub)
		return fn, nil
	}
	for {
		arg, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)
		if p.matchSymbol(",") {
			continue
		}
		if p.matchSymbol(")") {
			return fn, nil
		}
		return nil, p.errAt("unmatched parenthesis in argument list")
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		last := s[len(s)-1]
		if (s[0] == '\'' || s[0] == '"') && last == s[0] {
			return s[1 : len(s)-1]
		}
	}
	// Unterminated literal; strip only the opening delimiter.
	if len(s) >= 1 && (s[0] == '\'' || s[0] == '"') {
		return s[1:]
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
