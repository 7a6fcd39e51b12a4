// Package query turns raw user queries into boolean expression trees and
// renders those trees for the two storage paths: an FTS5 MATCH expression
// and an equivalent tree of LIKE containment predicates.
//
// The grammar supports terms, quoted phrases and the operators AND, OR and
// NOT, with NOT binding tightest, then AND (including the implicit AND
// between adjacent leaves), then OR. Parenthesized grouping is not
// supported; "A OR B AND C" always parses as "A OR (B AND C)".
package query

import "strings"

// Expr is a node in a parsed boolean query tree.
type Expr interface {
	isExpr()
}

// Term is a single bare word matched anywhere in a document.
type Term struct {
	Text string
}

// Phrase is a quoted sequence of words matched as a contiguous unit.
type Phrase struct {
	Text string
}

// And requires both operands to match.
type And struct {
	Left, Right Expr
}

// Or requires either operand to match.
type Or struct {
	Left, Right Expr
}

// Not inverts its single operand.
type Not struct {
	Operand Expr
}

func (Term) isExpr()   {}
func (Phrase) isExpr() {}
func (And) isExpr()    {}
func (Or) isExpr()     {}
func (Not) isExpr()    {}

// Parse builds an expression tree from a raw query string. It is total: it
// never fails, whatever the input. An empty or operator-only query returns
// nil, the canonical empty-match expression that matches no documents.
// A dangling operator with no right operand is dropped together with the
// operator.
func Parse(raw string) Expr {
	p := &parser{tokens: lex(raw)}

	var expr Expr
	for !p.done() {
		before := p.pos
		e := p.parseOr()
		if e != nil {
			if expr == nil {
				expr = e
			} else {
				expr = And{Left: expr, Right: e}
			}
		}
		if p.pos == before {
			// Stray operator that could not start an expression.
			p.pos++
		}
	}
	return expr
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// parseOr handles the lowest-precedence level.
func (p *parser) parseOr() Expr {
	left := p.parseAnd()
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOr {
			return left
		}
		p.pos++
		right := p.parseAnd()
		if right == nil {
			return left
		}
		if left == nil {
			left = right
			continue
		}
		left = Or{Left: left, Right: right}
	}
}

// parseAnd folds explicit AND operators and the implicit AND between two
// adjacent leaves or NOT-expressions.
func (p *parser) parseAnd() Expr {
	left := p.parseUnary()
	for {
		tok, ok := p.peek()
		if !ok {
			return left
		}
		switch tok.kind {
		case tokenAnd:
			p.pos++
		case tokenTerm, tokenPhrase, tokenNot:
			// implicit AND
		default:
			return left
		}
		right := p.parseUnary()
		if right == nil {
			return left
		}
		if left == nil {
			left = right
			continue
		}
		left = And{Left: left, Right: right}
	}
}

// parseUnary handles NOT prefixes and leaves. NOT applies to the single
// following leaf.
func (p *parser) parseUnary() Expr {
	tok, ok := p.peek()
	if !ok {
		return nil
	}
	switch tok.kind {
	case tokenNot:
		p.pos++
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return Not{Operand: operand}
	case tokenTerm:
		p.pos++
		return Term{Text: tok.text}
	case tokenPhrase:
		p.pos++
		return Phrase{Text: tok.text}
	default:
		return nil
	}
}

// Terms collects the term and phrase texts of an expression left to right,
// deduplicated case-insensitively. The result feeds snippet extraction and
// highlighting.
func Terms(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	collectTerms(e, seen, &out)
	return out
}

func addTerm(text string, seen map[string]bool, out *[]string) {
	key := strings.ToLower(text)
	if key == "" || seen[key] {
		return
	}
	seen[key] = true
	*out = append(*out, text)
}

func collectTerms(e Expr, seen map[string]bool, out *[]string) {
	switch n := e.(type) {
	case Term:
		addTerm(n.Text, seen, out)
	case Phrase:
		addTerm(n.Text, seen, out)
	case And:
		collectTerms(n.Left, seen, out)
		collectTerms(n.Right, seen, out)
	case Or:
		collectTerms(n.Left, seen, out)
		collectTerms(n.Right, seen, out)
	case Not:
		collectTerms(n.Operand, seen, out)
	}
}
