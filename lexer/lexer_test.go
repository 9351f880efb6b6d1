package lexer

import (
	"testing"

	"nyxlang/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func assertKinds(t *testing.T, src string, want ...token.Kind) {
	t.Helper()
	want = append(want, token.EOF)
	got := kinds(All([]byte(src)))
	if len(got) != len(want) {
		t.Fatalf("All(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestOperators(t *testing.T) {
	assertKinds(t, "+-*/%", token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT)
	assertKinds(t, "== != <= >= = < >",
		token.EQEQ, token.BANGEQ, token.LTEQ, token.GTEQ, token.EQ, token.LT, token.GT)
	assertKinds(t, ":= :: : -> => ..",
		token.COLONEQ, token.COLONCOLON, token.COLON, token.RARROW, token.ARROW, token.DOTDOT)
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	assertKinds(t, "fn if elif else while for in return break continue match defer and or true false nil _",
		token.FN, token.IF, token.ELIF, token.ELSE, token.WHILE, token.FOR, token.IN,
		token.RETURN, token.BREAK, token.CONTINUE, token.MATCH, token.DEFER,
		token.AND, token.OR, token.TRUE, token.FALSE, token.NIL, token.UNDERSCORE)
	assertKinds(t, "foo _bar baz2", token.IDENT, token.IDENT, token.IDENT)
}

func TestNumberLiterals(t *testing.T) {
	assertKinds(t, "123 1_000 3.14 0xFF", token.INT, token.INT, token.FLOAT, token.INT)
}

func TestStringLiteral(t *testing.T) {
	toks := All([]byte(`"hello world"`))
	if toks[0].Kind != token.STRING {
		t.Fatalf("got Kind %v, want STRING", toks[0].Kind)
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := All([]byte(`"unterminated`))
	if toks[0].Kind != token.ILLEGAL {
		t.Fatalf("got Kind %v, want ILLEGAL", toks[0].Kind)
	}
}

func TestUnescape(t *testing.T) {
	cases := map[string]string{
		`"a\nb"`:   "a\nb",
		`"a\tb"`:   "a\tb",
		`"a\\b"`:   "a\\b",
		`"a\"b"`:   "a\"b",
		`"plain"`:  "plain",
	}
	for lexeme, want := range cases {
		if got := Unescape(lexeme); got != want {
			t.Errorf("Unescape(%q) = %q, want %q", lexeme, got, want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	assertKinds(t, "1 # a comment\n2", token.INT, token.NEWLINE, token.INT)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New([]byte("fn add"))
	peeked := l.Peek()
	if peeked.Kind != token.FN {
		t.Fatalf("Peek() = %v, want FN", peeked.Kind)
	}
	next := l.Next()
	if next.Kind != token.FN || next.Start != peeked.Start {
		t.Fatalf("Next() after Peek() = %+v, want matching FN token", next)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := All([]byte("a\nb"))
	if toks[0].Line != 1 {
		t.Errorf("first token line = %d, want 1", toks[0].Line)
	}
	// toks[1] is NEWLINE, toks[2] is "b" on line 2.
	if toks[2].Line != 2 {
		t.Errorf("second identifier line = %d, want 2", toks[2].Line)
	}
}

func TestDescribeIllegalUnterminatedString(t *testing.T) {
	src := []byte(`"oops`)
	toks := All(src)
	msg := DescribeIllegal(src, toks[0])
	if msg == "" {
		t.Fatal("DescribeIllegal returned empty string")
	}
}
