package flagset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/lexer"
	"flagger/internal/parser"
	"flagger/internal/source"
)

type parsed struct {
	builder *ast.Builder
	items   []*ast.FlagsItem
	bag     *diag.Bag
}

func parseFlg(t *testing.T, src string) parsed {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.flg", []byte(src)))
	bag := diag.NewBag(100)
	rep := &diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs, lexer.New(file, lexer.Options{Reporter: rep}), builder, parser.Options{Reporter: rep})
	require.False(t, bag.HasErrors(), "syntax errors in test source")
	return parsed{builder: builder, items: builder.FlagSets(res.File), bag: bag}
}

// mustDefinition collects the single flag set in src.
func mustDefinition(t *testing.T, src string) *Definition {
	t.Helper()
	p := parseFlg(t, src)
	require.Len(t, p.items, 1)
	def, err := NewCollector(p.builder).Collect(p.items[0])
	require.NoError(t, err)
	return def
}

func mustResolve(t *testing.T, src string) *FlagSet {
	t.Helper()
	fs, err := Resolve(context.Background(), mustDefinition(t, src), Options{})
	require.NoError(t, err)
	return fs
}

func valueMap(fs *FlagSet) map[string]string {
	out := make(map[string]string, len(fs.Flags))
	for _, f := range fs.Flags {
		out[f.Name] = f.Value.String()
	}
	return out
}
