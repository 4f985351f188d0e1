package parser

import (
	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/source"
	"flagger/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr реализует Pratt parsing для бинарных операторов
// minPrec - минимальный приоритет для текущего уровня
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		tok := p.lx.Peek()
		prec := p.getBinaryOperatorPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		opTok := p.advance()

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}

		leftSpan := p.arenas.Exprs.Get(left).Span
		rightSpan := p.arenas.Exprs.Get(right).Span
		left = p.arenas.Exprs.NewBinary(leftSpan.Cover(rightSpan), binaryOps[opTok.Kind], opTok.Span, left, right)
	}

	return left, true
}

// parseUnaryExpr обрабатывает унарные операторы (префиксы)
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	type prefixOp struct {
		op   ast.ExprUnaryOp
		span source.Span
	}
	var prefixes []prefixOp

	for {
		op, ok := p.getUnaryOperator(p.lx.Peek().Kind)
		if !ok {
			break
		}
		opTok := p.advance()
		prefixes = append(prefixes, prefixOp{op: op, span: opTok.Span})
	}

	expr, ok := p.parsePostfixExpr()
	if !ok {
		return ast.NoExprID, false
	}

	// Применяем префиксы справа налево
	for i := len(prefixes) - 1; i >= 0; i-- {
		exprSpan := p.arenas.Exprs.Get(expr).Span
		expr = p.arenas.Exprs.NewUnary(prefixes[i].span.Cover(exprSpan), prefixes[i].op, expr)
	}
	return expr, true
}

// parsePostfixExpr обрабатывает вызовы: expr(args...)
func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for p.at(token.LParen) {
		expr, ok = p.parseCallExpr(expr)
		if !ok {
			return ast.NoExprID, false
		}
	}
	return expr, true
}

func (p *Parser) parseCallExpr(target ast.ExprID) (ast.ExprID, bool) {
	lparen := p.advance()
	var args []ast.ExprID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		arg, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	rparen, ok := p.expectClose(lparen)
	if !ok {
		return ast.NoExprID, false
	}
	span := p.arenas.Exprs.Get(target).Span.Cover(rparen.Span)
	return p.arenas.Exprs.NewCall(span, target, args), true
}

// parsePrimaryExpr парсит основные (атомарные) выражения
func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		return p.parsePathExpr()

	case token.IntLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLitInt, tok.Text), true

	case token.FloatLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLitFloat, tok.Text), true

	case token.StringLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLitString, tok.Text), true

	case token.LParen:
		lparen := p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		rparen, ok := p.expectClose(lparen)
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewGroup(lparen.Span.Cover(rparen.Span), inner), true

	case token.Invalid:
		// лексер уже сообщил об ошибке; не дублируем
		p.advance()
		return p.arenas.Exprs.NewBad(tok.Span), true

	default:
		p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
		return ast.NoExprID, false
	}
}

// parsePathExpr: Ident ( '::' Ident )*
func (p *Parser) parsePathExpr() (ast.ExprID, bool) {
	first := p.advance()
	segs := []ast.PathSegment{{Name: first.Text, Span: first.Span}}
	span := first.Span
	for p.at(token.ColonColon) {
		p.advance()
		seg, ok := p.parseIdent()
		if !ok {
			return ast.NoExprID, false
		}
		segs = append(segs, ast.PathSegment{Name: seg.Text, Span: seg.Span})
		span = span.Cover(seg.Span)
	}
	return p.arenas.Exprs.NewPath(span, segs), true
}

func (p *Parser) expectClose(lparen token.Token) (token.Token, bool) {
	if p.at(token.RParen) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	diag.ReportError(p.opts.Reporter, diag.SynUnclosedParen, sp, "expected ')'").
		WithNote(lparen.Span, "to match this '('").
		Emit()
	p.opts.CurrentErrors++
	return token.Token{Kind: token.Invalid, Span: sp}, false
}
