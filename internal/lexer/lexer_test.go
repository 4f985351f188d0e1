package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"flagger/internal/diag"
	"flagger/internal/lexer"
	"flagger/internal/source"
	"flagger/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

func (r *testReporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.flg", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return lx, reporter
}

// expectTokens проверяет последовательность токенов (без EOF)
func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := lx.All()
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, rep := makeTestLexer(input)
	tok := lx.Next()

	if tok.Kind != expectedKind {
		t.Errorf("Expected kind %v, got %v (%v)", expectedKind, tok.Kind, rep.ErrorMessages())
	}
	if tok.Text != expectedText {
		t.Errorf("Expected text %q, got %q", expectedText, tok.Text)
	}
	if next := lx.Next(); next.Kind != token.EOF {
		t.Errorf("Expected EOF after %q, got %v", input, next.Kind)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ====== идентификаторы и ключевые слова ======

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"Read", token.Ident},
		{"_hidden", token.Ident},
		{"_", token.Ident},
		{"x123", token.Ident},
		{"Self", token.Ident},
		{"flags", token.KwFlags},
		{"package", token.KwPackage},
		{"Flags", token.Ident},
		{"чтение", token.Ident},
		{"λx", token.Ident},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestIdentifiers_NFC(t *testing.T) {
	// "e" + combining acute → "é"
	lx, _ := makeTestLexer("Cafe\u0301")
	tok := lx.Next()
	if tok.Kind != token.Ident || tok.Text != "Caf\u00e9" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	if tok.Span.Len() != 6 {
		t.Fatalf("span must cover source bytes, got %d", tok.Span.Len())
	}
}

// ====== числа ======

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"0", token.IntLit},
		{"123", token.IntLit},
		{"1_000", token.IntLit},
		{"0b1010", token.IntLit},
		{"0B1111_0000", token.IntLit},
		{"0o777", token.IntLit},
		{"0xDEAD_beef", token.IntLit},
		{"340282366920938463463374607431768211455", token.IntLit},
		{"1.5", token.FloatLit},
		{".5", token.FloatLit},
		{"1e10", token.FloatLit},
		{"2.5E-3", token.FloatLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestNumbers_Bad(t *testing.T) {
	tests := []string{"0x", "0b_", "1e", "1u8", "0b102"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lx, rep := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.Invalid {
				t.Fatalf("expected Invalid, got %v", tok.Kind)
			}
			if len(rep.diagnostics) == 0 || rep.diagnostics[0].Code != diag.LexBadNumber {
				t.Fatalf("expected LexBadNumber, got %v", rep.ErrorMessages())
			}
		})
	}
}

// ====== операторы ======

func TestOperators(t *testing.T) {
	expectTokens(t, "| & ^ :: = , ( ) { } + << >> ! ~ && || == != < <= > >= ; # @ [ ] * / % -", []token.Kind{
		token.Pipe, token.Amp, token.Caret, token.ColonColon, token.Assign, token.Comma,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.Plus, token.Shl, token.Shr,
		token.Bang, token.Tilde, token.AndAnd, token.OrOr, token.EqEq, token.BangEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq, token.Semicolon, token.Hash, token.At,
		token.LBracket, token.RBracket, token.Star, token.Slash, token.Percent, token.Minus,
	})
}

func TestUnknownChar(t *testing.T) {
	lx, rep := makeTestLexer("A = $ 1")
	toks := lx.All()
	kinds := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []token.Kind{token.Ident, token.Assign, token.Invalid, token.IntLit, token.EOF}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if !rep.HasErrors() || rep.diagnostics[0].Code != diag.LexUnknownChar {
		t.Fatalf("expected LexUnknownChar, got %v", rep.ErrorMessages())
	}
}

func TestUnknownUnicodeRuneIsOneToken(t *testing.T) {
	lx, _ := makeTestLexer("→")
	tok := lx.Next()
	if tok.Kind != token.Invalid || tok.Text != "→" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	if lx.Next().Kind != token.EOF {
		t.Fatal("expected EOF")
	}
}

// ====== строки ======

func TestStrings(t *testing.T) {
	expectSingleToken(t, `"read\"write"`, token.StringLit, `"read\"write"`)

	lx, rep := makeTestLexer("\"open\nA")
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if rep.diagnostics[0].Code != diag.LexUnterminatedString {
		t.Fatalf("got %v", rep.ErrorMessages())
	}
}

// ====== trivia ======

func TestTrivia_DocAndComments(t *testing.T) {
	src := "// plain\n/// Read bit.\n//// banner\n/* a /* nested */ b */ Read"
	lx, rep := makeTestLexer(src)
	tok := lx.Next()
	if rep.HasErrors() {
		t.Fatalf("unexpected errors: %v", rep.ErrorMessages())
	}
	if tok.Kind != token.Ident || tok.Text != "Read" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	var kinds []token.TriviaKind
	for _, tv := range tok.Leading {
		if tv.Kind != token.TriviaSpace && tv.Kind != token.TriviaNewline {
			kinds = append(kinds, tv.Kind)
		}
	}
	want := []token.TriviaKind{token.TriviaLineComment, token.TriviaDocLine, token.TriviaLineComment, token.TriviaBlockComment}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("trivia = %v, want %v", kinds, want)
	}
	if doc := tok.DocComment(); len(doc) != 1 || doc[0] != "Read bit." {
		t.Fatalf("DocComment = %q", doc)
	}
}

func TestTrivia_UnterminatedBlock(t *testing.T) {
	lx, rep := makeTestLexer("/* never closed")
	if tok := lx.Next(); tok.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", tok.Kind)
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("got %v", rep.ErrorMessages())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("flags P")
	if lx.Peek().Kind != token.KwFlags {
		t.Fatal("peek")
	}
	if lx.Next().Kind != token.KwFlags || lx.Next().Kind != token.Ident {
		t.Fatal("next after peek")
	}
}

// ====== целая декларация ======

func TestFlagsDeclaration(t *testing.T) {
	src := `package perms

flags Permission {
    Read = 1,
    Write = 0b10,
    Both = Self::Read | Permission::Write,
    Odd(u8),
}
`
	expectTokens(t, src, []token.Kind{
		token.KwPackage, token.Ident,
		token.KwFlags, token.Ident, token.LBrace,
		token.Ident, token.Assign, token.IntLit, token.Comma,
		token.Ident, token.Assign, token.IntLit, token.Comma,
		token.Ident, token.Assign, token.Ident, token.ColonColon, token.Ident, token.Pipe,
		token.Ident, token.ColonColon, token.Ident, token.Comma,
		token.Ident, token.LParen, token.Ident, token.RParen, token.Comma,
		token.RBrace,
	})
}

func TestSpansAreByteAccurate(t *testing.T) {
	lx, _ := makeTestLexer("A = Self::B")
	toks := lx.All()
	want := [][2]uint32{{0, 1}, {2, 3}, {4, 8}, {8, 10}, {10, 11}, {11, 11}}
	for i, w := range want {
		if toks[i].Span.Start != w[0] || toks[i].Span.End != w[1] {
			t.Errorf("token %d span = %d..%d, want %d..%d", i, toks[i].Span.Start, toks[i].Span.End, w[0], w[1])
		}
	}
}
