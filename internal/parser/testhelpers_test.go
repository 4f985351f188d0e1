package parser

import (
	"fmt"
	"strings"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/lexer"
	"flagger/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseSource(input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.flg", []byte(input))
	file := fs.Get(fileID)
	bag := diag.NewBag(100)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	builder := ast.NewBuilder(ast.Hints{})
	res := ParseFile(fs, lx, builder, Options{Reporter: rep, MaxErrors: 100})
	return builder, res.File, res.Bag
}

// renderExpr печатает выражение в полностью скобочной форме для сравнения в тестах.
func renderExpr(b *ast.Builder, id ast.ExprID) string {
	e := b.Exprs.Get(id)
	if e == nil {
		return "<none>"
	}
	switch e.Kind {
	case ast.ExprLit:
		lit, _ := b.Exprs.Literal(id)
		return lit.Value
	case ast.ExprPath:
		path, _ := b.Exprs.Path(id)
		names := make([]string, len(path.Segments))
		for i, s := range path.Segments {
			names[i] = s.Name
		}
		return strings.Join(names, "::")
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		return "(" + renderExpr(b, bin.Left) + " " + bin.Op.String() + " " + renderExpr(b, bin.Right) + ")"
	case ast.ExprUnary:
		un, _ := b.Exprs.Unary(id)
		return un.Op.String() + renderExpr(b, un.Operand)
	case ast.ExprGroup:
		g, _ := b.Exprs.Group(id)
		return "[" + renderExpr(b, g.Inner) + "]"
	case ast.ExprCall:
		c, _ := b.Exprs.Call(id)
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = renderExpr(b, a)
		}
		return renderExpr(b, c.Target) + "(" + strings.Join(args, ", ") + ")"
	default:
		return "<bad>"
	}
}
