package driver

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"flagger/internal/diag"
	"flagger/internal/flagset"
	"flagger/internal/lexer"
	"flagger/internal/parser"
)

// ErrUnknownSet is returned by Eval when the file has no set of that name.
var ErrUnknownSet = errors.New("unknown flag set")

type EvalResult struct {
	Diagnose *DiagnoseResult
	Set      *flagset.FlagSet
	Expr     *flagset.Expr
	Value    flagset.Value
	Queries  []flagset.Query
	// OK is false when Diagnose.Bag holds the reason there is no value.
	OK bool
}

// Eval resolves the file, then evaluates exprText against the set named
// setName. The expression uses discriminant syntax: `Self::A | Set::B ^ 4`.
func Eval(ctx context.Context, path, setName, exprText string, opts DiagnoseOptions) (*EvalResult, error) {
	dres, err := Diagnose(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Diagnose: dres}

	set, ok := dres.Set(setName)
	if !ok {
		if dres.Bag.HasErrors() {
			// the set may exist but failed to resolve; the bag says why
			return res, nil
		}
		names := lo.Map(dres.Sets, func(s *flagset.FlagSet, _ int) string { return s.Name })
		sort.Strings(names)
		return nil, errors.Wrapf(ErrUnknownSet, "`%s` in %s (have: %s)", setName, path, strings.Join(names, ", "))
	}
	res.Set = set

	fs := dres.FileSet
	file := fs.Get(fs.AddVirtual("<expr>", []byte(exprText)))
	rep := &diag.BagReporter{Bag: dres.Bag}
	pres := parser.ParseExpression(fs, lexer.New(file, lexer.Options{Reporter: rep}), dres.Builder, parser.Options{Reporter: rep})
	if !pres.Expr.IsValid() {
		return res, nil
	}

	expr, err := flagset.NewCollector(dres.Builder).Lower(set.Name, pres.Expr)
	if err != nil {
		flagset.ReportAll(rep, err)
		return res, nil
	}
	res.Expr = expr

	v, err := set.Eval(expr)
	if err != nil {
		flagset.ReportAll(rep, err)
		return res, nil
	}
	res.Value = v
	res.Queries = set.Queries(v)
	res.OK = true
	return res, nil
}
