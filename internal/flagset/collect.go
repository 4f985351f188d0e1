package flagset

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/source"
)

// SelfQualifier names the enclosing flag set inside its own body.
const SelfQualifier = "Self"

// errSyntax marks an expression the parser already rejected. It stops the set
// from resolving without a second diagnostic.
var errSyntax = errors.New("expression has syntax errors")

// Collector lowers parsed `flags` items into Definitions.
type Collector struct {
	Items *ast.Items
	Exprs *ast.Exprs
}

// NewCollector binds a collector to the builder that produced the items.
func NewCollector(b *ast.Builder) *Collector {
	return &Collector{Items: b.Items, Exprs: b.Exprs}
}

// Collect produces the ordered declarations of item. Every structural and
// expression problem in the set is returned as one List; a set with any of
// them must not be resolved.
func (c *Collector) Collect(item *ast.FlagsItem) (*Definition, error) {
	def := &Definition{
		Name:     item.Name,
		NameSpan: item.NameSpan,
		Span:     item.Span,
		Doc:      item.Doc,
		Decls:    make([]Declaration, 0, len(item.Variants)),
	}

	var (
		errs List
		seen = make(map[string]source.Span, len(item.Variants))
	)
	for _, vid := range item.Variants {
		v := c.Items.Variant(vid)
		if v == nil {
			continue
		}

		if first, dup := seen[v.Name]; dup {
			errs = append(errs, newError(ErrDuplicateVariant, def.Name, v.Name, v.NameSpan,
				fmt.Sprintf("variant `%s` is declared more than once in `%s`", v.Name, def.Name),
				diag.Note{Span: first, Msg: "first declared here"}))
			continue
		}
		seen[v.Name] = v.NameSpan

		if v.Fields != ast.FieldsNone {
			errs = append(errs, newError(ErrStructural, def.Name, v.Name, v.FieldsSpan,
				fmt.Sprintf("flag variant `%s` cannot carry associated data", v.Name),
				diag.Note{Span: v.NameSpan, Msg: "flag variants are plain names with an optional `= value`"}))
			continue
		}

		decl := Declaration{
			Name:     v.Name,
			NameSpan: v.NameSpan,
			Span:     v.Span,
			Doc:      v.Doc,
		}
		if !v.Value.IsValid() {
			decl.Expr = Implicit(v.NameSpan)
		} else {
			expr, err := c.lower(def.Name, v.Name, v.Value)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			decl.Expr = expr
		}
		def.Decls = append(def.Decls, decl)
	}

	if len(errs) > 0 {
		return def, errs
	}
	return def, nil
}

// Lower converts a standalone expression written against set.
func (c *Collector) Lower(set string, id ast.ExprID) (*Expr, error) {
	return c.lower(set, "", id)
}

func (c *Collector) lower(set, variant string, id ast.ExprID) (*Expr, error) {
	e := c.Exprs.Get(id)
	if e == nil {
		return nil, errSyntax
	}
	invalid := func(sp source.Span, format string, args ...any) error {
		return newError(ErrInvalidExpression, set, variant, sp, fmt.Sprintf(format, args...))
	}

	switch e.Kind {
	case ast.ExprLit:
		lit, _ := c.Exprs.Literal(id)
		if lit.Kind != ast.ExprLitInt {
			return nil, invalid(e.Span, "%s literal cannot be a discriminant; use an integer", lit.Kind)
		}
		v, err := ParseLiteral(lit.Value)
		if err != nil {
			return nil, invalid(e.Span, "%s", err.Error())
		}
		return Literal(v, e.Span), nil

	case ast.ExprPath:
		path, _ := c.Exprs.Path(id)
		segs := path.Segments
		switch {
		case len(segs) == 1:
			return nil, newError(ErrInvalidExpression, set, variant, e.Span,
				fmt.Sprintf("bare identifier `%s` in discriminant", segs[0].Name),
				diag.Note{Span: e.Span, Msg: fmt.Sprintf("qualify it as `Self::%s` or `%s::%s`", segs[0].Name, set, segs[0].Name)})
		case len(segs) != 2:
			return nil, invalid(e.Span, "path `%s` must have exactly two segments", joinPath(segs))
		case segs[0].Name != SelfQualifier && segs[0].Name != set:
			return nil, newError(ErrInvalidExpression, set, variant, segs[0].Span,
				fmt.Sprintf("`%s` does not name this flag set", segs[0].Name),
				diag.Note{Span: segs[0].Span, Msg: fmt.Sprintf("use `Self` or `%s`", set)})
		}
		return Reference(segs[1].Name, e.Span), nil

	case ast.ExprGroup:
		g, _ := c.Exprs.Group(id)
		return c.lower(set, variant, g.Inner)

	case ast.ExprBinary:
		bin, _ := c.Exprs.Binary(id)
		var op Op
		switch bin.Op {
		case ast.ExprBinaryBitAnd:
			op = OpAnd
		case ast.ExprBinaryBitOr:
			op = OpOr
		case ast.ExprBinaryBitXor:
			op = OpXor
		default:
			return nil, newError(ErrInvalidExpression, set, variant, bin.OpSpan,
				fmt.Sprintf("operator `%s` is not allowed in a discriminant", bin.Op),
				diag.Note{Span: bin.OpSpan, Msg: "only `&`, `|` and `^` combine flags"})
		}
		// обе стороны проверяем, чтобы ошибки были у обеих
		left, lerr := c.lower(set, variant, bin.Left)
		right, rerr := c.lower(set, variant, bin.Right)
		if lerr != nil || rerr != nil {
			return nil, located(lerr, rerr)
		}
		return Binary(op, left, right, e.Span), nil

	case ast.ExprUnary:
		un, _ := c.Exprs.Unary(id)
		return nil, invalid(e.Span, "unary `%s` is not allowed in a discriminant", un.Op)

	case ast.ExprCall:
		return nil, invalid(e.Span, "calls are not allowed in a discriminant")

	case ast.ExprBad:
		return nil, errSyntax
	}
	return nil, invalid(e.Span, "unsupported expression")
}

// located merges operand errors. errSyntax only survives when nothing else
// was found.
func located(errs ...error) error {
	var (
		out      List
		fallback error
	)
	for _, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, errSyntax):
			fallback = err
		default:
			out = append(out, err)
		}
	}
	switch len(out) {
	case 0:
		return fallback
	case 1:
		return out[0]
	}
	return out
}

func joinPath(segs []ast.PathSegment) string {
	names := make([]string, len(segs))
	for i, s := range segs {
		names[i] = s.Name
	}
	return strings.Join(names, "::")
}

// ParseLiteral parses a decimal, 0x, 0o or 0b integer with optional `_`
// separators. A leading zero does not switch to octal.
func ParseLiteral(text string) (uint128.Uint128, error) {
	digits := text
	base := 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			base, digits = 16, digits[2:]
		case 'o', 'O':
			base, digits = 8, digits[2:]
		case 'b', 'B':
			base, digits = 2, digits[2:]
		}
	}
	digits = strings.TrimPrefix(digits, "_")
	if digits == "" || strings.HasSuffix(digits, "_") || strings.Contains(digits, "__") {
		return uint128.Zero, errors.Newf("malformed integer literal `%s`", text)
	}
	digits = strings.ReplaceAll(digits, "_", "")

	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return uint128.Zero, errors.Newf("malformed integer literal `%s`", text)
	}
	v, err := uint128.FromBig(n)
	if err != nil {
		return uint128.Zero, errors.Newf("literal `%s` overflows 128 bits", text)
	}
	return v, nil
}

// CheckDuplicateSets reports every definition whose name was already used by an
// earlier one. The returned slice keeps the first of each name, in order.
func CheckDuplicateSets(defs []*Definition) ([]*Definition, error) {
	var (
		errs  List
		first = make(map[string]*Definition, len(defs))
		keep  = make([]*Definition, 0, len(defs))
	)
	for _, d := range defs {
		if prev, dup := first[d.Name]; dup {
			errs = append(errs, newError(ErrDuplicateSet, d.Name, "", d.NameSpan,
				fmt.Sprintf("flag set `%s` is declared more than once", d.Name),
				diag.Note{Span: prev.NameSpan, Msg: "first declared here"}))
			continue
		}
		first[d.Name] = d
		keep = append(keep, d)
	}
	if len(errs) > 0 {
		return keep, errs
	}
	return keep, nil
}
