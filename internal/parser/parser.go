package parser

import (
	"slices"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/lexer"
	"flagger/internal/source"
	"flagger/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File ast.FileID
	Bag  *diag.Bag
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	sawItem  bool
}

// ParseFile: входная точка для разбора одного файла.
// Требует уже созданный lexer (на основе source.File).
func ParseFile(
	fs *source.FileSet,
	lx *lexer.Lexer,
	arenas *ast.Builder,
	opts Options,
) Result {
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.Files.New(lx.EmptySpan()),
		fs:       fs,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	p.parseItems()
	var bag *diag.Bag
	switch br := opts.Reporter.(type) {
	case *diag.BagReporter:
		bag = br.Bag
	case diag.BagReporter:
		bag = br.Bag
	}
	return Result{
		File: p.file,
		Bag:  bag,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseItems: основной цикл верхнего уровня, parseItem до EOF.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		if p.at(token.KwPackage) {
			p.parsePackageClause()
			continue
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.sawItem = true
		p.arenas.PushItem(p.file, itemID)
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lx.Peek().Span)
}

// parsePackageClause: `package name` [;]. Разрешён только один раз и только до первого flags.
func (p *Parser) parsePackageClause() {
	kw := p.advance()
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected package name after 'package'")
	if !ok {
		p.resyncTop()
		return
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	f := p.arenas.Files.Get(p.file)
	span := kw.Span.Cover(nameTok.Span)
	switch {
	case p.sawItem:
		p.report(diag.SynPackagePosition, diag.SevError, span, "package clause must precede all flag sets")
	case f.Package != "":
		diag.ReportError(p.opts.Reporter, diag.SynPackagePosition, span, "duplicate package clause").
			WithNote(f.PackageSpan, "first package clause is here").
			Emit()
		p.opts.CurrentErrors++
	default:
		f.Package = nameTok.Text
		f.PackageSpan = span
	}
}

// parseItem выбирает по первому токену нужный распознаватель top-level конструкции.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwFlags:
		return p.parseFlagsItem()
	default:
		tok := p.lx.Peek()
		p.report(diag.SynUnexpectedTopLevel, diag.SevError, tok.Span,
			"unexpected top-level construct \""+tok.Text+"\", expected 'flags'")
		p.advance()
		return ast.NoItemID, false
	}
}

// resyncTop: восстановление после ошибки на верхнем уровне:
// прокручиваем до стартового токена следующего item ИЛИ EOF.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.KwFlags, token.KwPackage)
}

// resyncUntil пропускает токены, пока не встретит один из stop (или EOF).
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(stop...) {
		p.advance()
	}
}

// parseIdent: утилита: ожидает Ident и возвращает его токен.
// На ошибке: репорт SynExpectIdentifier.
func (p *Parser) parseIdent() (token.Token, bool) {
	if p.at(token.Ident) {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return token.Token{}, false
}

// ExprResult is the outcome of ParseExpression.
type ExprResult struct {
	Expr ast.ExprID
	Bag  *diag.Bag
}

// ParseExpression разбирает одно выражение до конца ввода (для `flagger eval`).
func ParseExpression(
	fs *source.FileSet,
	lx *lexer.Lexer,
	arenas *ast.Builder,
	opts Options,
) ExprResult {
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		fs:       fs,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	expr, ok := p.parseExpr()
	if ok && !p.at(token.EOF) {
		tok := p.lx.Peek()
		p.report(diag.SynUnexpectedToken, diag.SevError, tok.Span, "unexpected "+tok.Kind.String()+" after expression")
		expr = ast.NoExprID
	}
	if !ok {
		expr = ast.NoExprID
	}

	var bag *diag.Bag
	switch br := opts.Reporter.(type) {
	case *diag.BagReporter:
		bag = br.Bag
	case diag.BagReporter:
		bag = br.Bag
	}
	return ExprResult{Expr: expr, Bag: bag}
}
