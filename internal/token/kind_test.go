package token_test

import (
	"testing"

	"flagger/internal/source"
	"flagger/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.IntLit, token.FloatLit, token.StringLit} {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.KwFlags, token.Plus, token.LParen} {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Assign, token.EqEq, token.Bang, token.BangEq, token.Tilde,
		token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.Shl, token.Shr, token.Amp, token.Pipe, token.Caret,
		token.AndAnd, token.OrOr, token.Colon, token.ColonColon,
		token.Semicolon, token.Comma, token.Dot,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.LBracket, token.RBracket,
		token.At, token.Hash,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.KwPackage, token.IntLit, token.EOF} {
		if tok(k).IsPunctOrOp() {
			t.Fatalf("%v must NOT be punct/op", k)
		}
	}
}

func TestIsIdentAndKeyword(t *testing.T) {
	if !tok(token.Ident).IsIdent() {
		t.Fatalf("Ident should be ident")
	}
	if tok(token.KwFlags).IsIdent() {
		t.Fatalf("KwFlags must not be ident")
	}
	if !tok(token.KwFlags).IsKeyword() || !tok(token.KwPackage).IsKeyword() {
		t.Fatalf("flags/package must be keywords")
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.ColonColon: "::",
		token.KwFlags:    "flags",
		token.IntLit:     "IntLit",
		token.Kind(250):  "Kind(?)",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", k, got, want)
		}
	}
}

func TestDocComment(t *testing.T) {
	tk := token.Token{
		Kind: token.Ident,
		Leading: []token.Trivia{
			{Kind: token.TriviaDocLine, Text: "/// Read access."},
			{Kind: token.TriviaNewline, Text: "\n"},
			{Kind: token.TriviaLineComment, Text: "// not a doc"},
			{Kind: token.TriviaDocLine, Text: "///tight"},
		},
	}
	got := tk.DocComment()
	if len(got) != 2 || got[0] != "Read access." || got[1] != "tight" {
		t.Fatalf("DocComment = %q", got)
	}
}
