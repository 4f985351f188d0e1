package flagset

import (
	"fmt"

	"github.com/gaze-network/uint128"

	"flagger/internal/source"
)

// Op is a bitwise operator allowed in a discriminant.
type Op uint8

const (
	OpAnd Op = iota
	OpOr
	OpXor
)

func (op Op) String() string {
	switch op {
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpXor:
		return "^"
	default:
		return "?"
	}
}

// Apply evaluates `a op b`.
func (op Op) Apply(a, b uint128.Uint128) uint128.Uint128 {
	switch op {
	case OpAnd:
		return a.And(b)
	case OpOr:
		return a.Or(b)
	default:
		return a.Xor(b)
	}
}

// ExprKind tags the variants of Expr.
type ExprKind uint8

const (
	// ExprImplicit is a variant written without `= expr`. It never resolves.
	ExprImplicit ExprKind = iota
	ExprLiteral
	ExprReference
	ExprBinary
)

// Expr is a lowered discriminant expression.
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Value uint128.Uint128 // ExprLiteral
	Name  string          // ExprReference
	Op    Op              // ExprBinary
	Left  *Expr
	Right *Expr
}

func Implicit(sp source.Span) *Expr {
	return &Expr{Kind: ExprImplicit, Span: sp}
}

func Literal(v uint128.Uint128, sp source.Span) *Expr {
	return &Expr{Kind: ExprLiteral, Value: v, Span: sp}
}

func Reference(name string, sp source.Span) *Expr {
	return &Expr{Kind: ExprReference, Name: name, Span: sp}
}

func Binary(op Op, left, right *Expr, sp source.Span) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right, Span: sp}
}

// String renders the expression with explicit grouping, e.g. "(Self::A | 4)".
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprImplicit:
		return "<implicit>"
	case ExprLiteral:
		return e.Value.String()
	case ExprReference:
		return "Self::" + e.Name
	case ExprBinary:
		return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
	default:
		return "?"
	}
}

// References returns every referenced name, left to right, with repeats.
func (e *Expr) References() []*Expr {
	var out []*Expr
	var walk func(*Expr)
	walk = func(x *Expr) {
		if x == nil {
			return
		}
		switch x.Kind {
		case ExprReference:
			out = append(out, x)
		case ExprBinary:
			walk(x.Left)
			walk(x.Right)
		}
	}
	walk(e)
	return out
}

// Declaration is one variant as the resolver sees it. Order is kept only for
// deterministic error reporting.
type Declaration struct {
	Name     string
	NameSpan source.Span
	Span     source.Span
	Doc      []string
	Expr     *Expr
}

// Definition is a collected `flags` item.
type Definition struct {
	Name     string
	NameSpan source.Span
	Span     source.Span
	Doc      []string
	Decls    []Declaration
}

// ResolvedFlag is a variant with its final value.
type ResolvedFlag struct {
	Name  string
	Value uint128.Uint128
	Span  source.Span
	Doc   []string
}

// SingleBit reports whether exactly one bit is set.
func (f ResolvedFlag) SingleBit() bool {
	return onesCount(f.Value) == 1
}

// FlagSet is the resolver output.
type FlagSet struct {
	Name     string
	NameSpan source.Span
	Span     source.Span
	Doc      []string
	Flags    []ResolvedFlag // declaration order
	Width    Width
	// MaxBit is the bit length of the largest value.
	MaxBit int

	index map[string]int
}

func newFlagSet(def *Definition, flags []ResolvedFlag, width Width, maxBit int) *FlagSet {
	fs := &FlagSet{
		Name:     def.Name,
		NameSpan: def.NameSpan,
		Span:     def.Span,
		Doc:      def.Doc,
		Flags:    flags,
		Width:    width,
		MaxBit:   maxBit,
		index:    make(map[string]int, len(flags)),
	}
	for i, f := range flags {
		fs.index[f.Name] = i
	}
	return fs
}

// Lookup finds a flag by variant name.
func (fs *FlagSet) Lookup(name string) (ResolvedFlag, bool) {
	i, ok := fs.index[name]
	if !ok {
		return ResolvedFlag{}, false
	}
	return fs.Flags[i], true
}

// Value returns the named flag as a Value of the set's width.
func (fs *FlagSet) Value(name string) (Value, bool) {
	f, ok := fs.Lookup(name)
	if !ok {
		return Value{}, false
	}
	return Value{Bits: f.Value, Width: fs.Width}, true
}

// NoneFlag is the empty value.
func (fs *FlagSet) NoneFlag() Value {
	return Value{Bits: uint128.Zero, Width: fs.Width}
}

// AllFlag is every bit of the backing width.
func (fs *FlagSet) AllFlag() Value {
	return Value{Bits: fs.Width.Mask(), Width: fs.Width}
}

// Format renders v as "Read|Write", "NoneFlag" or with a hex remainder
// for bits no single-bit flag names ("Read|0x80").
func (fs *FlagSet) Format(v Value) string {
	if v.Bits.IsZero() {
		return "NoneFlag"
	}
	var (
		out  []byte
		rest = v.Bits
	)
	for _, f := range fs.Flags {
		if !f.SingleBit() || v.Bits.And(f.Value).IsZero() {
			continue
		}
		if len(out) > 0 {
			out = append(out, '|')
		}
		out = append(out, f.Name...)
		rest = rest.Xor(rest.And(f.Value))
	}
	if !rest.IsZero() {
		if len(out) > 0 {
			out = append(out, '|')
		}
		out = append(out, "0x"...)
		out = append(out, rest.Big().Text(16)...)
	}
	return string(out)
}
