package token

import "testing"

func TestLexeme(t *testing.T) {
	src := []byte("fn add(a, b)")
	tok := Token{Kind: FN, Start: 0, End: 2}
	if got := tok.Lexeme(src); got != "fn" {
		t.Errorf("Lexeme() = %q, want %q", got, "fn")
	}
}

func TestLexemeOutOfRange(t *testing.T) {
	src := []byte("x")
	cases := []Token{
		{Start: -1, End: 1},
		{Start: 0, End: 5},
		{Start: 3, End: 1},
	}
	for _, tok := range cases {
		if got := tok.Lexeme(src); got != "" {
			t.Errorf("Lexeme(%+v) = %q, want empty", tok, got)
		}
	}
}

func TestKeywordsMapToExpectedKinds(t *testing.T) {
	want := map[string]Kind{
		"fn": FN, "if": IF, "else": ELSE, "while": WHILE, "for": FOR,
		"in": IN, "return": RETURN, "break": BREAK, "continue": CONTINUE,
		"match": MATCH, "defer": DEFER, "and": AND, "or": OR,
		"true": TRUE, "false": FALSE, "nil": NIL, "_": UNDERSCORE,
	}
	for word, kind := range want {
		got, ok := Keywords[word]
		if !ok {
			t.Errorf("Keywords[%q] missing", word)
			continue
		}
		if got != kind {
			t.Errorf("Keywords[%q] = %v, want %v", word, got, kind)
		}
	}
	if _, ok := Keywords["notakeyword"]; ok {
		t.Error("Keywords contains an entry for a non-keyword identifier")
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if got := FN.String(); got != "FN" {
		t.Errorf("FN.String() = %q, want FN", got)
	}
	if got := Kind(9999).String(); got == "" {
		t.Error("String() on an out-of-range Kind returned empty")
	}
}
