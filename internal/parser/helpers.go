package parser

import (
	"flagger/internal/diag"
	"flagger/internal/source"
	"flagger/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan: возвращает лучший span для диагностики.
// На EOF показываем позицию сразу после последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.AtEnd()
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.lx.Peek().Text}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter != nil {
		if sev == diag.SevError {
			p.opts.CurrentErrors++
		}
		if !p.opts.Enough() {
			p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
			return true
		}
		return false // достигли максимального количества ошибок
	}
	return false
}

// skipBalanced съедает сбалансированную группу, начиная с открывающей скобки,
// и возвращает её span. Используется для полей варианта, которые мы не разбираем.
func (p *Parser) skipBalanced() (source.Span, bool) {
	open := p.advance()
	closers := []token.Kind{closerOf(open.Kind)}
	span := open.Span
	for len(closers) > 0 {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.EOF:
			code := diag.SynUnclosedParen
			if open.Kind == token.LBrace {
				code = diag.SynUnclosedBrace
			}
			diag.ReportError(p.opts.Reporter, code, p.getDiagnosticSpan(), "unclosed "+open.Text).
				WithNote(open.Span, "opened here").
				Emit()
			p.opts.CurrentErrors++
			return span, false
		case token.LParen, token.LBrace, token.LBracket:
			closers = append(closers, closerOf(tok.Kind))
		case closers[len(closers)-1]:
			closers = closers[:len(closers)-1]
		}
		span = span.Cover(p.advance().Span)
	}
	return span, true
}

func closerOf(k token.Kind) token.Kind {
	switch k {
	case token.LParen:
		return token.RParen
	case token.LBrace:
		return token.RBrace
	default:
		return token.RBracket
	}
}
