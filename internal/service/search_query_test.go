package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "blank", raw: "   \t\n", want: []string{}},
		{name: "words", raw: "go  gin\tgorm", want: []string{"go", "gin", "gorm"}},
		{name: "phrase and operator", raw: `foo "bar baz" OR qux`, want: []string{"foo", "bar baz", "OR", "qux"}},
		{name: "phrase keeps inner spacing", raw: `"  spaced  out "`, want: []string{"  spaced  out "}},
		{name: "empty quotes are a word", raw: `"" next`, want: []string{`""`, "next"}},
		{name: "unterminated quote", raw: `"open phrase`, want: []string{`"open`, "phrase"}},
		{name: "quote inside word", raw: `ab"cd ef"`, want: []string{`ab"cd`, `ef"`}},
		{name: "phrase glued to word", raw: `"a b"c`, want: []string{"a b", "c"}},
		{name: "unicode", raw: `écologie "énergie solaire"`, want: []string{"écologie", "énergie solaire"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(tt.raw))
		})
	}
}

func TestCompileQueryOneShotOr(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "single", raw: "foo", want: "foo"},
		{name: "implicit and", raw: "foo bar", want: "(foo AND bar)"},
		{name: "or binds next term only", raw: `foo "bar baz" OR qux`, want: `((foo AND "bar baz") OR qux)`},
		{name: "or resets to and", raw: "a OR b c", want: "((a OR b) AND c)"},
		{name: "lowercase or", raw: "a or b", want: "(a OR b)"},
		{name: "leading or ignored", raw: "OR a b", want: "(a AND b)"},
		{name: "trailing or ignored", raw: "a b OR", want: "(a AND b)"},
		{name: "double or", raw: "a OR OR b", want: "(a OR b)"},
		{name: "quoted OR is an operator", raw: `a "OR" b`, want: "(a OR b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := CompileQuery(ParseQuery(tt.raw))
			require.NotNil(t, expr)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestCompileQueryWithoutTerms(t *testing.T) {
	assert.Nil(t, CompileQuery(nil))
	assert.Nil(t, CompileQuery([]string{"OR", "or"}))
}

func TestQueryExprMatch(t *testing.T) {
	expr := CompileQuery(ParseQuery(`foo "bar baz" OR qux`))

	assert.True(t, expr.Match("foo and bar baz"))
	assert.True(t, expr.Match("only QUX here"))
	assert.False(t, expr.Match("foo alone"))
	assert.False(t, expr.Match("bar baz alone"))
	assert.True(t, expr.Match("FOO", "Bar Baz"), "terms may match across fields")
}

func TestQueryExprSQL(t *testing.T) {
	expr := CompileQuery(ParseQuery("a OR b_c"))

	sql, args := expr.SQL([]string{"t.title", "t.body"}, "LIKE")

	assert.Equal(t, `((t.title LIKE ? ESCAPE '\' OR t.body LIKE ? ESCAPE '\') OR (t.title LIKE ? ESCAPE '\' OR t.body LIKE ? ESCAPE '\'))`, sql)
	assert.Equal(t, []interface{}{"%a%", "%a%", `%b\_c%`, `%b\_c%`}, args)
}

func TestQueryExprSQLEmpty(t *testing.T) {
	var expr *QueryExpr
	sql, args := expr.SQL([]string{"title"}, "LIKE")
	assert.Empty(t, sql)
	assert.Nil(t, args)
}
