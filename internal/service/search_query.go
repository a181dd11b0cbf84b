package service

import (
	"strings"
	"unicode"
)

// QueryOp joins two compiled predicates.
type QueryOp int

const (
	OpAnd QueryOp = iota
	OpOr
)

func (op QueryOp) String() string {
	if op == OpOr {
		return "OR"
	}
	return "AND"
}

// QueryExpr 是搜索词编译后的布尔表达式。
// 叶子节点只有 Term，内部节点由 Op 连接 Left 与 Right。
type QueryExpr struct {
	Term  string
	Op    QueryOp
	Left  *QueryExpr
	Right *QueryExpr
}

// IsLeaf reports whether e is a single term predicate.
func (e *QueryExpr) IsLeaf() bool {
	return e.Left == nil && e.Right == nil
}

// ParseQuery splits raw into terms. A double quoted run with at least one
// character inside is one term with the quotes stripped; anything else is a
// maximal run of non-whitespace characters.
func ParseQuery(raw string) []string {
	runes := []rune(raw)
	tokens := make([]string, 0, 4)

	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}

		if runes[i] == '"' {
			if end := indexRuneFrom(runes, '"', i+1); end > i+1 {
				tokens = append(tokens, string(runes[i+1:end]))
				i = end + 1
				continue
			}
		}

		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) {
			j++
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}

	return tokens
}

func indexRuneFrom(runes []rune, target rune, from int) int {
	for k := from; k < len(runes); k++ {
		if runes[k] == target {
			return k
		}
	}
	return -1
}

// CompileQuery folds tokens left to right into one predicate.
//
// A token equal to OR (any case) makes only the next term join with OR; the
// operator falls back to AND right after, so `a b OR c d` is ((a AND b) OR c) AND d.
// Returns nil when there is no term to match.
func CompileQuery(tokens []string) *QueryExpr {
	var acc *QueryExpr
	op := OpAnd

	for _, token := range tokens {
		if strings.EqualFold(token, "OR") {
			op = OpOr
			continue
		}

		leaf := &QueryExpr{Term: token}
		if acc == nil {
			acc = leaf
		} else {
			acc = &QueryExpr{Op: op, Left: acc, Right: leaf}
		}
		op = OpAnd
	}

	return acc
}

// String renders the expression with explicit grouping, e.g. ((foo AND "bar baz") OR qux).
func (e *QueryExpr) String() string {
	if e == nil {
		return ""
	}
	if e.IsLeaf() {
		if strings.IndexFunc(e.Term, unicode.IsSpace) >= 0 {
			return `"` + e.Term + `"`
		}
		return e.Term
	}
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// Match evaluates the expression in memory; a term matches when any field
// contains it, ignoring case.
func (e *QueryExpr) Match(fields ...string) bool {
	if e == nil {
		return true
	}
	if e.IsLeaf() {
		needle := strings.ToLower(e.Term)
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}

	if e.Op == OpOr {
		return e.Left.Match(fields...) || e.Right.Match(fields...)
	}
	return e.Left.Match(fields...) && e.Right.Match(fields...)
}

// SQL renders the expression as a WHERE fragment. Each term becomes
// `(col1 LIKE ? OR col2 LIKE ? ...)` using likeOp (LIKE or ILIKE).
func (e *QueryExpr) SQL(columns []string, likeOp string) (string, []interface{}) {
	if e == nil || len(columns) == 0 {
		return "", nil
	}

	if e.IsLeaf() {
		pattern := "%" + escapeLike(e.Term) + "%"
		parts := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, column := range columns {
			parts = append(parts, column+" "+likeOp+" ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args
	}

	left, leftArgs := e.Left.SQL(columns, likeOp)
	right, rightArgs := e.Right.SQL(columns, likeOp)
	return "(" + left + " " + e.Op.String() + " " + right + ")", append(leftArgs, rightArgs...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
