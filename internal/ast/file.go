package ast

import (
	"flagger/internal/source"
)

// File is one parsed .flg source.
type File struct {
	Span source.Span
	// Package is the name from an optional `package x` clause; empty when absent.
	Package     string
	PackageSpan source.Span
	Items       []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{
		Span:  sp,
		Items: make([]ItemID, 0),
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
