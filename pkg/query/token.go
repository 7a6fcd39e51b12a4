package query

import "strings"

type tokenKind int

const (
	tokenTerm tokenKind = iota
	tokenPhrase
	tokenAnd
	tokenOr
	tokenNot
)

// token is a lexical unit of a raw query string.
type token struct {
	kind tokenKind
	text string
}

// lex splits a raw query into terms, quoted phrases and boolean operators.
// A double quote opens a phrase that runs verbatim to the closing quote; an
// unterminated phrase consumes the rest of the string. Outside phrases,
// whitespace separates tokens and the standalone words AND, OR and NOT
// (case-insensitive) become operators. Empty phrases are dropped.
func lex(raw string) []token {
	var tokens []token
	runes := []rune(raw)

	i := 0
	for i < len(runes) {
		switch {
		case isSpace(runes[i]):
			i++
		case runes[i] == '"':
			i++
			start := i
			for i < len(runes) && runes[i] != '"' {
				i++
			}
			text := string(runes[start:i])
			if i < len(runes) {
				i++ // closing quote
			}
			if text != "" {
				tokens = append(tokens, token{kind: tokenPhrase, text: text})
			}
		default:
			start := i
			for i < len(runes) && !isSpace(runes[i]) && runes[i] != '"' {
				i++
			}
			word := string(runes[start:i])
			switch strings.ToUpper(word) {
			case "AND":
				tokens = append(tokens, token{kind: tokenAnd})
			case "OR":
				tokens = append(tokens, token{kind: tokenOr})
			case "NOT":
				tokens = append(tokens, token{kind: tokenNot})
			default:
				tokens = append(tokens, token{kind: tokenTerm, text: word})
			}
		}
	}

	return tokens
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
