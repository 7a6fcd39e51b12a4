package query

import "strings"

// ftsSpecial lists the FTS5 query syntax characters that force a token to
// be quoted so user text cannot inject match syntax.
const ftsSpecial = ".*:><[]{}()-+^~"

// FTSQuery renders an expression tree as an FTS5 MATCH expression. Terms
// containing FTS5 metacharacters are double-quoted with interior quotes
// doubled; phrases are always quoted. A nil expression renders as the
// empty string.
func FTSQuery(e Expr) string {
	if e == nil {
		return ""
	}
	switch n := e.(type) {
	case Term:
		return escapeFTSToken(n.Text)
	case Phrase:
		return quoteFTS(n.Text)
	case And:
		// FTS5 treats adjacency as AND.
		return FTSQuery(n.Left) + " " + FTSQuery(n.Right)
	case Or:
		return "(" + FTSQuery(n.Left) + " OR " + FTSQuery(n.Right) + ")"
	case Not:
		return "NOT " + FTSQuery(n.Operand)
	}
	return ""
}

// escapeFTSToken quotes a bare term when it contains characters meaningful
// to the FTS5 query parser.
func escapeFTSToken(text string) string {
	if strings.ContainsAny(text, ftsSpecial) || strings.Contains(text, `"`) {
		return quoteFTS(text)
	}
	return text
}

func quoteFTS(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

// LikeQuery renders an expression tree as a SQL predicate over the
// documents text column, mirroring the And/Or/Not structure with
// case-insensitive LIKE containment tests. It returns the clause with ?
// placeholders and the corresponding arguments. A nil expression yields an
// empty clause.
//
// LIKE wildcard characters inside a term are escaped so user text is
// matched literally.
func LikeQuery(e Expr) (string, []any) {
	if e == nil {
		return "", nil
	}
	var args []any
	clause := likeClause(e, &args)
	return clause, args
}

func likeClause(e Expr, args *[]any) string {
	switch n := e.(type) {
	case Term:
		*args = append(*args, "%"+escapeLike(n.Text)+"%")
		return `text LIKE ? ESCAPE '\'`
	case Phrase:
		*args = append(*args, "%"+escapeLike(n.Text)+"%")
		return `text LIKE ? ESCAPE '\'`
	case And:
		return "(" + likeClause(n.Left, args) + " AND " + likeClause(n.Right, args) + ")"
	case Or:
		return "(" + likeClause(n.Left, args) + " OR " + likeClause(n.Right, args) + ")"
	case Not:
		return "NOT (" + likeClause(n.Operand, args) + ")"
	}
	return ""
}

func escapeLike(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "%", `\%`)
	text = strings.ReplaceAll(text, "_", `\_`)
	return text
}
