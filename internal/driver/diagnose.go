package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/flagset"
	"flagger/internal/observ"
	"flagger/internal/source"
	"flagger/internal/trace"
)

type DiagnoseResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	FileID  ast.FileID
	Bag     *diag.Bag
	Builder *ast.Builder
	// Package is the file's own `package` clause, empty when absent.
	Package string
	// Defs holds every set that collected cleanly, in file order.
	Defs []*flagset.Definition
	// Sets holds every set that also resolved.
	Sets  []*flagset.FlagSet
	Timer *observ.Timer
}

// DiagnoseOptions содержит опции для диагностики
type DiagnoseOptions struct {
	MaxDiagnostics int
	Resolve        flagset.Options
	EnableTimings  bool
	// SkipResolve stops after collection.
	SkipResolve bool
	Observer    PhaseObserver
}

// Diagnose runs load, lex, parse, collect and resolve over one .flg file.
// Problems in the source end up in Bag; the error is reserved for failures
// that leave nothing to report against (unreadable file, cancellation).
func Diagnose(ctx context.Context, path string, opts DiagnoseOptions) (*DiagnoseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return DiagnoseFile(ctx, fs, fs.Get(fileID), opts)
}

// DiagnoseFile is Diagnose over a file already in fs. fs is only read, so
// several files of one set may be diagnosed concurrently.
func DiagnoseFile(ctx context.Context, fs *source.FileSet, file *source.File, opts DiagnoseOptions) (*DiagnoseResult, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "diagnose")
	defer span.End(file.Path)

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	phase := newPhaser(ctx, timer, opts.Observer)

	res := &DiagnoseResult{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Timer:   timer,
	}

	var err error
	done := phase("parse")
	res.Builder, res.FileID, err = parseFile(fs, file, res.Bag, opts.MaxDiagnostics)
	if err != nil {
		done("")
		return nil, err
	}
	fileNode := res.Builder.Files.Get(res.FileID)
	items := res.Builder.FlagSets(res.FileID)
	done(fmt.Sprintf("sets=%d", len(items)))
	if fileNode != nil {
		res.Package = fileNode.Package
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// одинаковые диагностики схлопываются
	counter := &diag.CountingReporter{Next: &diag.BagReporter{Bag: res.Bag}}
	rep := diag.NewDedupReporter(counter)
	done = phase("collect")
	collector := flagset.NewCollector(res.Builder)
	defs := make([]*flagset.Definition, 0, len(items))
	for _, item := range items {
		def, cerr := collector.Collect(item)
		if cerr != nil {
			flagset.ReportAll(rep, cerr)
			continue
		}
		defs = append(defs, def)
	}
	// duplicates only count against sets that made it this far
	defs, derr := flagset.CheckDuplicateSets(defs)
	flagset.ReportAll(rep, derr)
	res.Defs = defs
	done(phaseNote("defs", len(defs), counter.Errors))
	collectErrors := counter.Errors

	if len(items) == 0 && !res.Bag.HasErrors() {
		diag.ReportWarning(rep, diag.FlgEmptyFile, emptySpan(file), "file declares no flag sets").
			WithNote(emptySpan(file), "declare one with `flags Name { ... }`").
			Emit()
	}

	if !opts.SkipResolve {
		done = phase("resolve")
		res.Sets = make([]*flagset.FlagSet, 0, len(defs))
		for _, def := range defs {
			if err := ctx.Err(); err != nil {
				done("cancelled")
				return nil, err
			}
			set, rerr := flagset.Resolve(ctx, def, opts.Resolve)
			if rerr != nil {
				flagset.ReportAll(rep, rerr)
				continue
			}
			res.Sets = append(res.Sets, set)
		}
		done(phaseNote("sets", len(res.Sets), counter.Errors-collectErrors))
	}

	if timer != nil {
		report := timer.Report()
		AppendTimingDiagnostic(res.Bag, TimingPayload{
			Kind:    "file",
			Path:    file.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res, nil
}

// OK reports whether the file produced no error diagnostics.
func (r *DiagnoseResult) OK() bool {
	return r != nil && !r.Bag.HasErrors()
}

// Set finds a resolved set by name.
func (r *DiagnoseResult) Set(name string) (*flagset.FlagSet, bool) {
	for _, s := range r.Sets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func phaseNote(what string, n, errs int) string {
	if errs == 0 {
		return fmt.Sprintf("%s=%d", what, n)
	}
	return fmt.Sprintf("%s=%d errors=%d", what, n, errs)
}

func emptySpan(file *source.File) source.Span {
	return source.Span{File: file.ID}
}

// newPhaser returns a phase starter that feeds the timer, the tracer and
// the observer at once. Every part is optional.
func newPhaser(ctx context.Context, timer *observ.Timer, obs PhaseObserver) func(name string) func(note string) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	return func(name string) func(note string) {
		started := time.Now()
		track := timer.Track(name)
		span := trace.Begin(tracer, trace.ScopePass, name, parent)
		if obs != nil {
			obs(PhaseEvent{Name: name, Status: PhaseStart})
		}
		return func(note string) {
			track(note)
			span.End(note)
			if obs != nil {
				obs(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(started)})
			}
		}
	}
}
