package parser

import (
	"fmt"
	"strings"
)

// TokenType classifies a lexical unit of a policy expression.
type TokenType int

const (
	// TokenWord is an identifier, keyword, or bare literal.
	TokenWord TokenType = iota
	// TokenQuoted is a quoted region captured whole, delimiters included.
	TokenQuoted
	// TokenSymbol is a single punctuation or operator character.
	TokenSymbol
)

// String returns the string representation of a token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenWord:
		return "WORD"
	case TokenQuoted:
		return "QUOTED"
	case TokenSymbol:
		return "SYMBOL"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical unit. Pos is the byte offset in the normalized
// expression where the token starts.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d", t.Type, t.Value, t.Pos)
}

// Normalize collapses runs of whitespace (spaces, tabs, newlines) in an
// expression to single spaces and trims the ends.
func Normalize(expression string) string {
	return strings.Join(strings.Fields(expression), " ")
}

// isSymbolChar reports whether c always forms a single-character token
// outside quoted regions.
func isSymbolChar(c byte) bool {
	switch c {
	case '(', ')', ',', '=', '<', '>', '!':
		return true
	}
	return false
}

// Tokenize splits a normalized expression into tokens. Quoted regions
// ('...' or "...") are captured whole and never split on internal
// whitespace or operators. Backslashes carry no special meaning inside
// quotes; a literal closes at the next matching quote character, and an
// unterminated literal runs to the end of the input.
func Tokenize(expression string) []Token {
	var tokens []Token
	var word strings.Builder
	wordStart := 0

	flush := func(end int) {
		if word.Len() > 0 {
			tokens = append(tokens, Token{Type: TokenWord, Value: word.String(), Pos: wordStart})
			word.Reset()
		}
		wordStart = end
	}

	for i := 0; i < len(expression); i++ {
		c := expression[i]
		switch {
		case c == '\'' || c == '"':
			flush(i)
			start := i
			j := i + 1
			for j < len(expression) && expression[j] != c {
				j++
			}
			if j < len(expression) {
				j++ // include the closing delimiter
			}
			tokens = append(tokens, Token{Type: TokenQuoted, Value: expression[start:j], Pos: start})
			i = j - 1
			wordStart = j
		case isSymbolChar(c):
			flush(i)
			tokens = append(tokens, Token{Type: TokenSymbol, Value: string(c), Pos: i})
			wordStart = i + 1
		case c == ' ':
			flush(i)
			wordStart = i + 1
		default:
			if word.Len() == 0 {
				wordStart = i
			}
			word.WriteByte(c)
		}
	}
	flush(len(expression))

	return tokens
}
