package diagfmt

import (
	"context"
	"testing"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/flagset"
	"flagger/internal/lexer"
	"flagger/internal/parser"
	"flagger/internal/source"
)

const permsSrc = `package perms

/// Access bits.
flags Perms {
    Read = 1,
    Write = 2,
    Exec = 4,
    ReadWrite = Self::Read | Self::Write,
}
`

func parseSrc(t *testing.T, src string) (*source.FileSet, *ast.Builder, ast.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("perms.flg", []byte(src)))
	bag := diag.NewBag(50)
	rep := &diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs, lexer.New(file, lexer.Options{Reporter: rep}), b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %d", bag.Len())
	}
	return fs, b, res.File
}

func resolveSrc(t *testing.T, src string) []*flagset.FlagSet {
	t.Helper()
	_, b, fileID := parseSrc(t, src)
	c := flagset.NewCollector(b)
	var sets []*flagset.FlagSet
	for _, item := range b.FlagSets(fileID) {
		def, err := c.Collect(item)
		if err != nil {
			t.Fatalf("collect %s: %v", item.Name, err)
		}
		set, err := flagset.Resolve(context.Background(), def, flagset.Options{})
		if err != nil {
			t.Fatalf("resolve %s: %v", item.Name, err)
		}
		sets = append(sets, set)
	}
	return sets
}
