package lexer

import (
	"flagger/internal/diag"
	"flagger/internal/token"
)

// collectLeadingTrivia собирает trivia перед значимым токеном в lx.hold.
// Runs of blanks and runs of newlines each become one trivia. "///" starts a
// doc line, "////" is an ordinary comment. Block comments nest.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch b := lx.cursor.Peek(); {
		case isBlank(b):
			lx.skipWhile(isBlank)
			lx.pushTrivia(token.TriviaSpace, start)
		case b == '\n':
			lx.skipWhile(func(c byte) bool { return c == '\n' })
			lx.pushTrivia(token.TriviaNewline, start)
		case lx.cursor.HasPrefix("//"):
			lx.scanLineComment(start)
		case lx.cursor.HasPrefix("/*"):
			lx.scanBlockComment(start)
		default:
			return
		}
	}
}

// '\r' тоже пробел: одиночный CR переживает нормализацию
func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func (lx *Lexer) skipWhile(pred func(byte) bool) {
	for !lx.cursor.EOF() && pred(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

func (lx *Lexer) scanLineComment(start Mark) {
	kind := token.TriviaLineComment
	if lx.cursor.HasPrefix("///") && !lx.cursor.HasPrefix("////") {
		kind = token.TriviaDocLine
	}
	lx.skipWhile(func(c byte) bool { return c != '\n' })
	lx.pushTrivia(kind, start)
}

func (lx *Lexer) scanBlockComment(start Mark) {
	lx.cursor.EatPrefix("/*")
	depth := 1
	for !lx.cursor.EOF() && depth > 0 {
		switch {
		case lx.cursor.EatPrefix("/*"):
			depth++
		case lx.cursor.EatPrefix("*/"):
			depth--
		default:
			lx.cursor.Bump()
		}
	}
	if depth > 0 {
		lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
	}
	lx.pushTrivia(token.TriviaBlockComment, start)
}
