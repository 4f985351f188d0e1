package ast

import (
	"flagger/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprLit represents a literal expression.
	ExprLit ExprKind = iota
	// ExprPath represents `Seg::Seg...` or a bare identifier.
	ExprPath
	// ExprBinary represents a binary expression.
	ExprBinary
	// ExprUnary represents a unary expression.
	ExprUnary
	// ExprGroup represents a parenthesised expression.
	ExprGroup
	// ExprCall represents `target(args...)`.
	ExprCall
	// ExprBad is produced after a syntax error so the tree stays complete.
	ExprBad
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	// Арифметические
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod

	// Битовые
	ExprBinaryBitAnd
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryShiftLeft
	ExprBinaryShiftRight

	// Логические
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr

	// Сравнения
	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
)

var binaryOpText = [...]string{
	ExprBinaryAdd:        "+",
	ExprBinarySub:        "-",
	ExprBinaryMul:        "*",
	ExprBinaryDiv:        "/",
	ExprBinaryMod:        "%",
	ExprBinaryBitAnd:     "&",
	ExprBinaryBitOr:      "|",
	ExprBinaryBitXor:     "^",
	ExprBinaryShiftLeft:  "<<",
	ExprBinaryShiftRight: ">>",
	ExprBinaryLogicalAnd: "&&",
	ExprBinaryLogicalOr:  "||",
	ExprBinaryEq:         "==",
	ExprBinaryNotEq:      "!=",
	ExprBinaryLess:       "<",
	ExprBinaryLessEq:     "<=",
	ExprBinaryGreater:    ">",
	ExprBinaryGreaterEq:  ">=",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsBitwise reports whether op is one of the operators allowed in discriminants.
func (op ExprBinaryOp) IsBitwise() bool {
	return op == ExprBinaryBitAnd || op == ExprBinaryBitOr || op == ExprBinaryBitXor
}

// ExprUnaryOp enumerates unary operator kinds.
type ExprUnaryOp uint8

const (
	ExprUnaryMinus  ExprUnaryOp = iota // -x
	ExprUnaryNot                       // !x
	ExprUnaryBitNot                    // ~x
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryMinus:
		return "-"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryBitNot:
		return "~"
	}
	return "?"
}

// ExprLitKind enumerates literal kinds.
type ExprLitKind uint8

const (
	ExprLitInt ExprLitKind = iota
	ExprLitFloat
	ExprLitString
)

func (k ExprLitKind) String() string {
	switch k {
	case ExprLitInt:
		return "int"
	case ExprLitFloat:
		return "float"
	case ExprLitString:
		return "string"
	}
	return "?"
}

// ExprLiteralData keeps the literal exactly as written.
type ExprLiteralData struct {
	Kind  ExprLitKind
	Value string
}

// PathSegment is one `::`-separated component.
type PathSegment struct {
	Name string
	Span source.Span
}

// ExprPathData represents an identifier path.
type ExprPathData struct {
	Segments []PathSegment
}

// ExprBinaryData represents a binary expression.
type ExprBinaryData struct {
	Op     ExprBinaryOp
	OpSpan source.Span
	Left   ExprID
	Right  ExprID
}

// ExprUnaryData represents a unary expression.
type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

// ExprGroupData represents a parenthesised expression.
type ExprGroupData struct {
	Inner ExprID
}

// ExprCallData represents a call expression.
type ExprCallData struct {
	Target ExprID
	Args   []ExprID
}
