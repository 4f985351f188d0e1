package ast

import (
	"flagger/internal/source"
)

// FlagsItem is a `flags Name { ... }` declaration.
type FlagsItem struct {
	Name     string
	NameSpan source.Span
	Span     source.Span
	Doc      []string
	Variants []VariantID
}

// VariantFields describes associated data written after a variant name.
// Flag variants never carry data; the parser still records it so the
// collector can reject it with a precise span.
type VariantFields uint8

const (
	FieldsNone VariantFields = iota
	FieldsTuple              // Name(T, ...)
	FieldsStruct             // Name { f: T }
)

// Variant is one entry of a flags body.
type Variant struct {
	Name       string
	NameSpan   source.Span
	Span       source.Span
	Doc        []string
	Fields     VariantFields
	FieldsSpan source.Span
	// Value is NoExprID for an implicit discriminant.
	Value ExprID
}

type Items struct {
	Arena    *Arena[FlagsItem]
	Variants *Arena[Variant]
}

// NewItems creates item arenas; capHint 0 selects a default of 1<<6.
func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:    NewArena[FlagsItem](capHint),
		Variants: NewArena[Variant](capHint << 2),
	}
}

func (i *Items) New(item FlagsItem) ItemID {
	return ItemID(i.Arena.Allocate(item))
}

func (i *Items) Get(id ItemID) *FlagsItem {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewVariant(v Variant) VariantID {
	return VariantID(i.Variants.Allocate(v))
}

func (i *Items) Variant(id VariantID) *Variant {
	return i.Variants.Get(uint32(id))
}
