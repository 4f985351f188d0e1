package lexer

import (
	"flagger/internal/diag"
	"flagger/internal/token"
)

// Двухсимвольные операторы проверяются первыми (жадность).
var pairOps = [...]struct {
	text string
	kind token.Kind
}{
	{"::", token.ColonColon},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
}

var singleOps = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'=': token.Assign,
	'!': token.Bang,
	'~': token.Tilde,
	'<': token.Lt,
	'>': token.Gt,
	'&': token.Amp,
	'|': token.Pipe,
	'^': token.Caret,
	':': token.Colon,
	';': token.Semicolon,
	',': token.Comma,
	'.': token.Dot,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
	'@': token.At,
	'#': token.Hash,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range pairOps {
		if lx.cursor.EatPrefix(op.text) {
			return lx.tokenFrom(op.kind, start)
		}
	}

	ch := lx.cursor.Peek()
	if ch >= utf8RuneSelf {
		// не-идентификаторная руна целиком, а не по байту
		lx.bumpRune()
	} else {
		lx.cursor.Bump()
		if kind, ok := singleOps[ch]; ok {
			return lx.tokenFrom(kind, start)
		}
	}
	tok := lx.tokenFrom(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character")
	return tok
}

func (lx *Lexer) tokenFrom(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	}
}
