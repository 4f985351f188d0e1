package parser

import (
	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/token"
)

// parseFlagsItem parses a flag-set declaration:
//
//	/// doc
//	flags Permission { Read = 1, Write = Self::Read << 1, Exec }
func (p *Parser) parseFlagsItem() (ast.ItemID, bool) {
	kw := p.advance()
	doc := kw.DocComment()

	name, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}

	if _, ok = p.expect(token.LBrace, diag.SynFlagsExpectBody, "expected '{' after flag set name"); !ok {
		return ast.NoItemID, false
	}

	variants := p.parseFlagVariants()

	rbrace, ok := p.expect(token.RBrace, diag.SynFlagsExpectRBrace, "expected '}' after flags body")
	if !ok {
		return ast.NoItemID, false
	}
	span := kw.Span.Cover(rbrace.Span)
	if p.at(token.Semicolon) {
		span = span.Cover(p.advance().Span)
	}

	return p.arenas.Items.New(ast.FlagsItem{
		Name:     name.Text,
		NameSpan: name.Span,
		Span:     span,
		Doc:      doc,
		Variants: variants,
	}), true
}

// parseFlagVariants parses a comma-separated list of variants up to '}':
//
//	A, B = 2, C(u8), D { x: u8 } = 4,
//
// Ошибочный вариант пропускается до ',' или '}', остальные сохраняются.
func (p *Parser) parseFlagVariants() []ast.VariantID {
	var variants []ast.VariantID

	// flags внутри тела, значит '}' потерялась; отдаём управление наверх
	for !p.atOr(token.RBrace, token.EOF, token.KwFlags) {
		if p.opts.Enough() {
			p.resyncUntil(token.RBrace)
			break
		}
		first := p.lx.Peek()
		doc := first.DocComment()

		name, ok := p.parseIdent()
		if !ok {
			p.recoverVariant()
			continue
		}
		v := ast.Variant{
			Name:     name.Text,
			NameSpan: name.Span,
			Span:     name.Span,
			Doc:      doc,
		}

		switch {
		case p.at(token.LParen):
			v.Fields = ast.FieldsTuple
			v.FieldsSpan, ok = p.skipBalanced()
		case p.at(token.LBrace):
			v.Fields = ast.FieldsStruct
			v.FieldsSpan, ok = p.skipBalanced()
		}
		if !ok {
			break
		}
		if v.Fields != ast.FieldsNone {
			v.Span = v.Span.Cover(v.FieldsSpan)
		}

		if p.at(token.Assign) {
			p.advance()
			value, ok := p.parseExpr()
			if !ok {
				p.recoverVariant()
				continue
			}
			v.Value = value
			v.Span = v.Span.Cover(p.arenas.Exprs.Get(value).Span)
		}
		variants = append(variants, p.arenas.Items.NewVariant(v))

		if p.at(token.Comma) {
			p.advance()
			continue
		}
		if !p.atOr(token.RBrace, token.EOF) {
			p.err(diag.SynExpectComma, "expected ',' or '}' after variant, got \""+p.lx.Peek().Text+"\"")
			p.recoverVariant()
		}
	}

	return variants
}

// recoverVariant: прокрутка до следующего варианта.
func (p *Parser) recoverVariant() {
	p.resyncUntil(token.Comma, token.RBrace, token.KwFlags)
	if p.at(token.Comma) {
		p.advance()
	}
}
