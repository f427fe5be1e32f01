package parser

import "strings"

// parseSubquery consumes a parenthesized SELECT whose opening "(" has
// already been consumed, through its matching ")". The subquery is
// decomposed shallowly: select, from, and join lists stay raw text, and
// only the WHERE clause is parsed recursively.
func (p *parser) parseSubquery() (Node, error) {
	if p.subDepth >= maxSubqueryDepth {
		return nil, p.errAt("subquery nesting too deep")
	}

	start := p.pos
	depth := 1
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.errAt("unmatched parenthesis in subquery")
		}
		if tok.Type == TokenSymbol {
			switch tok.Value {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
		if depth == 0 {
			break
		}
		p.advance()
	}
	inner := p.tokens[start:p.pos]
	p.advance() // closing ")"

	query, err := p.decomposeSubquery(inner)
	if err != nil {
		return nil, err
	}
	return &SubqueryNode{Raw: p.render(inner), Query: query}, nil
}

// joinStarters are the words that open a join clause in a from list.
var joinStarters = map[string]bool{
	"JOIN":  true,
	"INNER": true,
	"LEFT":  true,
	"RIGHT": true,
	"FULL":  true,
	"CROSS": true,
}

func (p *parser) decomposeSubquery(tokens []Token) (*Subquery, error) {
	sub := &Subquery{}

	fromIdx := keywordIndex(tokens, 1, "FROM")
	selectEnd := len(tokens)
	if fromIdx >= 0 {
		selectEnd = fromIdx
	}
	sub.SelectList = p.renderList(splitOnCommas(tokens[1:selectEnd]))

	if fromIdx < 0 {
		return sub, nil
	}

	whereIdx := keywordIndex(tokens, fromIdx+1, "WHERE")
	fromEnd := len(tokens)
	if whereIdx >= 0 {
		fromEnd = whereIdx
	}
	joinIdx := joinStart(tokens, fromIdx+1, fromEnd)
	tableEnd := fromEnd
	if joinIdx >= 0 {
		tableEnd = joinIdx
	}
	sub.FromList = p.renderList(splitOnCommas(tokens[fromIdx+1 : tableEnd]))

	if joinIdx >= 0 {
		sub.Joins = p.renderJoins(tokens[joinIdx:fromEnd])
	}

	if whereIdx >= 0 {
		wp := &parser{tokens: tokens[whereIdx+1:], src: p.src, subDepth: p.subDepth + 1}
		where, err := wp.parseExpression()
		if err != nil {
			return nil, err
		}
		sub.Where = where
	}
	return sub, nil
}

// keywordIndex returns the first index at or after from where the token is
// the given keyword at parenthesis depth zero, or -1.
func keywordIndex(tokens []Token, from int, word string) int {
	depth := 0
	for i := from; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Type == TokenSymbol {
			switch tok.Value {
			case "(":
				depth++
			case ")":
				depth--
			}
			continue
		}
		if depth == 0 && tok.Type == TokenWord && strings.EqualFold(tok.Value, word) {
			return i
		}
	}
	return -1
}

// joinStart returns the index of the first join clause in tokens[from:end]
// at parenthesis depth zero, or -1.
func joinStart(tokens []Token, from, end int) int {
	depth := 0
	for i := from; i < end; i++ {
		tok := tokens[i]
		if tok.Type == TokenSymbol {
			switch tok.Value {
			case "(":
				depth++
			case ")":
				depth--
			}
			continue
		}
		if depth == 0 && tok.Type == TokenWord && joinStarters[strings.ToUpper(tok.Value)] {
			return i
		}
	}
	return -1
}

// splitOnCommas splits a token run into comma-separated items, honoring
// nested parentheses. Empty items are dropped.
func splitOnCommas(tokens []Token) [][]Token {
	var items [][]Token
	depth := 0
	start := 0
	for i, tok := range tokens {
		if tok.Type != TokenSymbol {
			continue
		}
		switch tok.Value {
		case "(":
			depth++
		case ")":
			depth--
		case ",":
			if depth == 0 {
				if i > start {
					items = append(items, tokens[start:i])
				}
				start = i + 1
			}
		}
	}
	if start < len(tokens) {
		items = append(items, tokens[start:])
	}
	return items
}

// render reconstructs the source text spanned by a token run.
func (p *parser) render(tokens []Token) string {
	if len(tokens) == 0 {
		return ""
	}
	first := tokens[0]
	last := tokens[len(tokens)-1]
	return p.src[first.Pos : last.Pos+len(last.Value)]
}

func (p *parser) renderList(items [][]Token) []string {
	var out []string
	for _, item := range items {
		if s := p.render(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// renderJoins splits a run of join clauses on join-starter keywords and
// renders each clause raw. "INNER JOIN x ON ..." stays one clause.
func (p *parser) renderJoins(tokens []Token) []string {
	var joins []string
	start := 0
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Type != TokenWord || !joinStarters[strings.ToUpper(tok.Value)] {
			continue
		}
		// "JOIN" directly after a starter word belongs to the same clause.
		if strings.EqualFold(tok.Value, "JOIN") && i == start+1 {
			continue
		}
		joins = append(joins, p.render(tokens[start:i]))
		start = i
	}
	if start < len(tokens) {
		joins = append(joins, p.render(tokens[start:]))
	}
	return joins
}
