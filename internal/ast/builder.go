package ast

import (
	"flagger/internal/source"
)

type Hints struct{ Files, Items, Exprs uint }

type Builder struct {
	Files *Files
	Items *Items
	Exprs *Exprs
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 3
	}
	if hints.Items == 0 {
		hints.Items = 1 << 6
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Items: NewItems(hints.Items),
		Exprs: NewExprs(hints.Exprs),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}

// FlagSets returns the flags items of file in declaration order.
func (b *Builder) FlagSets(file FileID) []*FlagsItem {
	f := b.Files.Get(file)
	if f == nil {
		return nil
	}
	out := make([]*FlagsItem, 0, len(f.Items))
	for _, id := range f.Items {
		if it := b.Items.Get(id); it != nil {
			out = append(out, it)
		}
	}
	return out
}
