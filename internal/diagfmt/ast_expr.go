package diagfmt

import (
	"fmt"
	"strings"

	"flagger/internal/ast"
)

const maxExprDepth = 64

// formatExprInline renders an expression back to source-like text.
// Groups keep their parentheses so the output mirrors what was written.
func formatExprInline(builder *ast.Builder, exprID ast.ExprID) string {
	return formatExprDepth(builder, exprID, 0)
}

func formatExprDepth(builder *ast.Builder, exprID ast.ExprID, depth int) string {
	if !exprID.IsValid() {
		return "<none>"
	}
	if depth > maxExprDepth {
		return "…"
	}
	expr := builder.Exprs.Get(exprID)
	if expr == nil {
		return "<nil>"
	}

	switch expr.Kind {
	case ast.ExprLit:
		if lit, ok := builder.Exprs.Literal(exprID); ok {
			if lit.Kind == ast.ExprLitString {
				return fmt.Sprintf("%q", lit.Value)
			}
			return lit.Value
		}
	case ast.ExprPath:
		if p, ok := builder.Exprs.Path(exprID); ok {
			parts := make([]string, len(p.Segments))
			for i, seg := range p.Segments {
				parts[i] = seg.Name
			}
			return strings.Join(parts, "::")
		}
	case ast.ExprBinary:
		if b, ok := builder.Exprs.Binary(exprID); ok {
			return fmt.Sprintf("%s %s %s",
				formatExprDepth(builder, b.Left, depth+1), b.Op, formatExprDepth(builder, b.Right, depth+1))
		}
	case ast.ExprUnary:
		if u, ok := builder.Exprs.Unary(exprID); ok {
			return u.Op.String() + formatExprDepth(builder, u.Operand, depth+1)
		}
	case ast.ExprGroup:
		if g, ok := builder.Exprs.Group(exprID); ok {
			return "(" + formatExprDepth(builder, g.Inner, depth+1) + ")"
		}
	case ast.ExprCall:
		if c, ok := builder.Exprs.Call(exprID); ok {
			args := make([]string, len(c.Args))
			for i, a := range c.Args {
				args[i] = formatExprDepth(builder, a, depth+1)
			}
			return formatExprDepth(builder, c.Target, depth+1) + "(" + strings.Join(args, ", ") + ")"
		}
	case ast.ExprBad:
		return "<bad>"
	}
	return "<?>"
}

func formatExprKind(kind ast.ExprKind) string {
	switch kind {
	case ast.ExprLit:
		return "Literal"
	case ast.ExprPath:
		return "Path"
	case ast.ExprBinary:
		return "Binary"
	case ast.ExprUnary:
		return "Unary"
	case ast.ExprGroup:
		return "Group"
	case ast.ExprCall:
		return "Call"
	case ast.ExprBad:
		return "Bad"
	}
	return fmt.Sprintf("Expr(%d)", kind)
}
