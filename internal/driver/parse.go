package driver

import (
	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/lexer"
	"flagger/internal/parser"
	"flagger/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
}

// Parse lexes and parses one file without collecting flag sets.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", filePath)
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	builder, astFile, err := parseFile(fs, file, bag, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  astFile,
		Bag:     bag,
	}, nil
}

func parseFile(fs *source.FileSet, file *source.File, bag *diag.Bag, maxDiagnostics int) (*ast.Builder, ast.FileID, error) {
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, ast.NoFileID, errors.Wrap(err, "max diagnostics")
	}
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs, lx, builder, parser.Options{
		Reporter:  rep,
		MaxErrors: maxErrors,
	})
	return builder, res.File, nil
}
