package flagset

import (
	"fmt"

	"flagger/internal/diag"
)

// Eval computes a lowered expression against the resolved flags of fs.
// Unlike Resolve it fails immediately on an unknown name.
func (fs *FlagSet) Eval(e *Expr) (Value, error) {
	switch e.Kind {
	case ExprLiteral:
		if BitLen(e.Value) > int(fs.Width) {
			return Value{}, newError(ErrInvalidExpression, fs.Name, "", e.Span,
				fmt.Sprintf("literal %s does not fit in %d bits", e.Value, fs.Width))
		}
		return Value{Bits: e.Value, Width: fs.Width}, nil
	case ExprReference:
		v, ok := fs.Value(e.Name)
		if !ok {
			return Value{}, newError(ErrUnresolvedDiscriminant, fs.Name, e.Name, e.Span,
				fmt.Sprintf("`%s` is not declared in `%s`", e.Name, fs.Name),
				diag.Note{Span: fs.NameSpan, Msg: fmt.Sprintf("`%s` declared here", fs.Name)})
		}
		return v, nil
	case ExprBinary:
		l, err := fs.Eval(e.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := fs.Eval(e.Right)
		if err != nil {
			return Value{}, err
		}
		return Value{Bits: e.Op.Apply(l.Bits, r.Bits), Width: fs.Width}, nil
	default:
		return Value{}, newError(ErrInvalidExpression, fs.Name, "", e.Span, "expression has no value")
	}
}

// Query is one row of an `eval` report.
type Query struct {
	Flag        ResolvedFlag
	HasAnyFlag  bool
	HasAllFlags bool
}

// Queries tests v against every flag of the set, in declaration order.
func (fs *FlagSet) Queries(v Value) []Query {
	out := make([]Query, len(fs.Flags))
	for i, f := range fs.Flags {
		fv := Value{Bits: f.Value, Width: fs.Width}
		out[i] = Query{Flag: f, HasAnyFlag: v.HasAnyFlag(fv), HasAllFlags: v.HasAllFlags(fv)}
	}
	return out
}
