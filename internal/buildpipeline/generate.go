package buildpipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"flagger/internal/diag"
	"flagger/internal/driver"
	"flagger/internal/emit"
	"flagger/internal/flagset"
	"flagger/internal/observ"
	"flagger/internal/project"
	"flagger/internal/source"
	"flagger/internal/trace"
)

// ErrOutputNeedsFile is returned when -o is combined with several inputs.
var ErrOutputNeedsFile = errors.New("an explicit output path needs exactly one input file")

// GenRequest configures one `flagger gen` run.
type GenRequest struct {
	// Path is a .flg file or a directory walked for .flg files.
	Path string
	// Output overrides the output path of a single input.
	Output         string
	Settings       project.Settings
	ToolVersion    string
	Jobs           int
	MaxDiagnostics int
	DryRun         bool
	// Cache is consulted and filled when non-nil.
	Cache         *driver.DiskCache
	EnableTimings bool
	Progress      ProgressSink
}

// FileResult is the outcome for one input, in path order.
type FileResult struct {
	Path    string
	Output  *driver.Output
	Cached  bool
	Written bool
	Failed  bool
}

// GenResult captures every file of a run and the merged diagnostics.
type GenResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Bag     *diag.Bag
	Timings Timings
}

// HasErrors reports whether any file failed.
func (r *GenResult) HasErrors() bool {
	return r.Bag.HasErrors() || lo.SomeBy(r.Files, func(f FileResult) bool { return f.Failed })
}

// Written lists the output paths that changed on disk.
func (r *GenResult) Written() []string {
	return lo.FilterMap(r.Files, func(f FileResult, _ int) (string, bool) {
		if !f.Written {
			return "", false
		}
		return f.Output.Path, true
	})
}

type fileState struct {
	FileResult
	file *source.File
	bag  *diag.Bag
}

// Generate runs parse, resolve, emit and write for every input. Files are
// analysed in parallel, then flag set names are checked across the files of
// each directory in path order, then outputs are written in parallel. A file
// with any error diagnostic gets no output; other files are still written.
func Generate(ctx context.Context, req *GenRequest) (*GenResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, errors.New("missing gen request")
	}
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "gen")
	defer span.End(req.Path)

	timer := observ.NewTimer()
	doneList := timer.Track("list")
	files, isDir, err := driver.Inputs(req.Path)
	if err != nil {
		doneList("")
		return nil, err
	}
	doneList(fmt.Sprintf("files=%d", len(files)))
	if req.Output != "" && isDir {
		return nil, ErrOutputNeedsFile
	}

	base := req.Path
	if !isDir {
		base = filepath.Dir(req.Path)
	}
	res := &GenResult{FileSet: source.NewFileSetWithBase(base)}
	if len(files) == 0 {
		res.Bag = diag.NewBag(req.MaxDiagnostics)
		return res, nil
	}

	doneLoad := timer.Track("load")
	loaded := driver.LoadFiles(res.FileSet, files)
	doneLoad("")
	emitQueued(req.Progress, files)

	states := make([]*fileState, len(loaded))
	for i, in := range loaded {
		states[i] = &fileState{FileResult: FileResult{Path: in.Path}, file: in.File}
	}

	p := &pipeline{req: req, fset: res.FileSet, timings: &res.Timings}

	doneAnalyze := timer.Track("analyze")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(driver.Jobs(req.Jobs, len(loaded)))
	for i, in := range loaded {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if in.Err != nil {
				states[i].bag = driver.LoadErrorBag(in.Path, in.Err, req.MaxDiagnostics)
				states[i].Failed = true
				p.event(in.Path, StageParse, StatusError, in.Err, 0)
				return nil
			}
			return p.analyze(gctx, states[i])
		})
	}
	if err := g.Wait(); err != nil {
		doneAnalyze("cancelled")
		return nil, err
	}
	doneAnalyze("")

	doneLink := timer.Track("link")
	p.link(states)
	doneLink("")

	doneWrite := timer.Track("write")
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(driver.Jobs(req.Jobs, len(states)))
	for _, st := range states {
		if st.Failed || st.Output == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.write(st)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		doneWrite("cancelled")
		return nil, err
	}
	doneWrite("")

	bags := make([]*diag.Bag, 0, len(states))
	for _, st := range states {
		res.Files = append(res.Files, st.FileResult)
		bags = append(bags, st.bag)
	}
	res.Bag = driver.MergeBags(req.MaxDiagnostics, bags...)

	if req.EnableTimings {
		report := timer.Report()
		driver.AppendTimingDiagnostic(res.Bag, driver.TimingPayload{
			Kind:    "gen",
			Path:    req.Path,
			Files:   len(files),
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res, nil
}

type pipeline struct {
	req  *GenRequest
	fset *source.FileSet

	mu      sync.Mutex
	timings *Timings
}

func (p *pipeline) event(file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if p.req.Progress == nil {
		return
	}
	p.req.Progress.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func (p *pipeline) record(stage Stage, d time.Duration) {
	p.mu.Lock()
	p.timings.Add(stage, d)
	p.mu.Unlock()
}

// stageOf maps driver phase names onto progress stages.
func stageOf(phase string) Stage {
	switch phase {
	case "resolve":
		return StageResolve
	default:
		return StageParse
	}
}

func (p *pipeline) analyze(ctx context.Context, st *fileState) error {
	req := p.req
	var key project.Digest
	if req.Cache != nil {
		key = driver.CacheKey(req.ToolVersion, req.Settings, req.Settings.PackageFor(st.Path, ""), st.file.Content)
		if payload, ok := req.Cache.Get(key); ok {
			st.Output = driver.OutputFromPayload(st.Path, req.Settings, payload)
			st.Cached = true
			st.bag = diag.NewBag(req.MaxDiagnostics)
			p.overrideOutput(st)
			p.event(st.Path, StageEmit, StatusCached, nil, 0)
			return nil
		}
	}

	opts := driver.DiagnoseOptions{
		MaxDiagnostics: req.MaxDiagnostics,
		Resolve:        req.Settings.ResolveOptions(),
		Observer: func(ev driver.PhaseEvent) {
			stage := stageOf(ev.Name)
			if ev.Status == driver.PhaseStart {
				p.event(st.Path, stage, StatusWorking, nil, 0)
				return
			}
			p.record(stage, ev.Elapsed)
		},
	}
	dres, err := driver.DiagnoseFile(ctx, p.fset, st.file, opts)
	if err != nil {
		return errors.Wrapf(err, "diagnose %s", st.Path)
	}
	st.bag = dres.Bag
	if !dres.OK() {
		st.Failed = true
		p.event(st.Path, StageResolve, StatusError, errors.New("diagnostics reported errors"), 0)
		return nil
	}

	started := time.Now()
	p.event(st.Path, StageEmit, StatusWorking, nil, 0)
	out := driver.Emit(dres, req.Settings)
	elapsed := time.Since(started)
	p.record(StageEmit, elapsed)
	if out == nil {
		st.Failed = true
		p.event(st.Path, StageEmit, StatusError, errors.New("emit failed"), elapsed)
		return nil
	}
	st.Output = out
	p.overrideOutput(st)
	p.event(st.Path, StageEmit, StatusDone, nil, elapsed)

	if req.Cache != nil {
		if err := req.Cache.Put(key, out.Payload()); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeNode, "cache-put", err.Error(), trace.CurrentSpan(ctx).SpanID)
		}
	}
	return nil
}

func (p *pipeline) overrideOutput(st *fileState) {
	if p.req.Output != "" {
		st.Output.Path = p.req.Output
	}
}

// link checks the files of each directory as one Go package: flag sets
// declared in more than one file, then generated identifiers declared by more
// than one file. The first file in path order keeps the name.
func (p *pipeline) link(states []*fileState) {
	p.event("", StageLink, StatusWorking, nil, 0)
	started := time.Now()

	byDir := lo.GroupBy(
		lo.Filter(states, func(st *fileState, _ int) bool { return !st.Failed && st.Output != nil }),
		func(st *fileState) string { return filepath.Dir(st.Path) },
	)
	owner := make(map[source.FileID]*fileState, len(states))
	for _, st := range states {
		if st.file != nil {
			owner[st.file.ID] = st
		}
	}

	for _, dir := range sortedKeys(byDir) {
		group := byDir[dir]
		if len(group) < 2 {
			continue
		}
		defs := lo.FlatMap(group, func(st *fileState, _ int) []*flagset.Definition {
			return st.Output.Definitions(st.file.ID)
		})
		_, err := flagset.CheckDuplicateSets(defs)
		for _, e := range flagset.Errors(err) {
			st := owner[e.Span.File]
			if st == nil {
				continue
			}
			e.Report(&diag.BagReporter{Bag: st.bag})
			st.Failed = true
			p.event(st.Path, StageEmit, StatusError, e, 0)
		}
		p.checkIdents(group)
	}

	elapsed := time.Since(started)
	p.record(StageLink, elapsed)
	p.event("", StageLink, StatusDone, nil, elapsed)
}

type identClaim struct {
	ident emit.Ident
	set   source.Span
}

// checkIdents reports every set whose generated identifiers were already
// declared by an earlier file of group. Clashes inside one file are rejected
// by emit; here bare names (prefix = false) and joins such as A+BC vs AB+C
// are caught across files.
func (p *pipeline) checkIdents(group []*fileState) {
	seen := make(map[string]identClaim)
	for _, st := range group {
		if st.Failed {
			continue
		}
		rep := &diag.BagReporter{Bag: st.bag}
		var clashes int
		for _, cs := range st.Output.Sets {
			setSpan := source.Span{File: st.file.ID, Start: cs.Start, End: cs.End}
			for _, id := range cs.Idents {
				prev, taken := seen[id.Name]
				if !taken {
					continue
				}
				msg := fmt.Sprintf("%s generates identifier %q, already declared by %s in package %s",
					id.Owner, id.Name, prev.ident.Owner, st.Output.Package)
				diag.ReportError(rep, diag.FlgNameCollision, setSpan, msg).
					WithNote(prev.set, "first declared here").
					Emit()
				clashes++
				break // одна диагностика на набор
			}
		}
		if clashes > 0 {
			st.Failed = true
			p.event(st.Path, StageEmit, StatusError, errors.Newf("%d identifier collisions", clashes), 0)
			continue
		}
		for _, cs := range st.Output.Sets {
			setSpan := source.Span{File: st.file.ID, Start: cs.Start, End: cs.End}
			for _, id := range cs.Idents {
				seen[id.Name] = identClaim{ident: id, set: setSpan}
			}
		}
	}
}

func (p *pipeline) write(st *fileState) {
	if p.req.DryRun {
		p.event(st.Path, StageWrite, StatusSkipped, nil, 0)
		return
	}
	started := time.Now()
	p.event(st.Path, StageWrite, StatusWorking, nil, 0)
	written, err := driver.WriteOutput(st.Output.Path, st.Output.Code)
	elapsed := time.Since(started)
	p.record(StageWrite, elapsed)
	if err != nil {
		diag.ReportError(&diag.BagReporter{Bag: st.bag}, diag.IOWriteFileError, source.Span{File: st.file.ID}, err.Error()).Emit()
		st.Failed = true
		p.event(st.Path, StageWrite, StatusError, err, elapsed)
		return
	}
	st.Written = written
	status := StatusDone
	if !written {
		status = StatusSkipped
	}
	p.event(st.Path, StageWrite, status, nil, elapsed)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}
