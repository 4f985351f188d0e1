package driver

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"flagger/internal/diag"
	"flagger/internal/emit"
	"flagger/internal/flagset"
	"flagger/internal/project"
	"flagger/internal/source"
)

// Output is the generated file for one .flg input.
type Output struct {
	Source  string
	Path    string
	Package string
	Code    []byte
	Sets    []CachedSet
}

// Emit renders the resolved sets of a clean DiagnoseResult. Emitter
// failures that come from the source (bad package, identifier clashes) are
// reported into res.Bag and yield nil.
func Emit(res *DiagnoseResult, s project.Settings) *Output {
	if !res.OK() {
		return nil
	}
	pkg := s.PackageFor(res.Path, res.Package)
	opts := s.EmitOptions(pkg, filepath.Base(res.Path))
	code, err := emit.File(res.Sets, opts)
	if err != nil {
		reportEmitError(res, err)
		return nil
	}
	return &Output{
		Source:  res.Path,
		Path:    emit.OutputPath(res.Path, s.Suffix),
		Package: pkg,
		Code:    code,
		Sets:    cachedSets(res.Sets, opts),
	}
}

func reportEmitError(res *DiagnoseResult, err error) {
	rep := &diag.BagReporter{Bag: res.Bag}
	code := diag.FlgNameCollision
	sp := source.Span{File: res.File.ID}
	switch {
	case errors.Is(err, emit.ErrInvalidPackage):
		code = diag.ProjInvalidOption
		if fileNode := res.Builder.Files.Get(res.FileID); fileNode != nil && fileNode.Package != "" {
			sp = fileNode.PackageSpan
		}
	case errors.Is(err, emit.ErrNameCollision):
		if len(res.Sets) > 0 {
			sp = res.Sets[0].NameSpan
		}
	default:
		diag.ReportError(rep, diag.UnknownCode, sp, err.Error()).Emit()
		return
	}
	diag.ReportError(rep, code, sp, err.Error()).Emit()
}

func cachedSets(sets []*flagset.FlagSet, opts emit.Options) []CachedSet {
	return lo.Map(sets, func(fs *flagset.FlagSet, _ int) CachedSet {
		return CachedSet{
			Name:   fs.Name,
			Start:  fs.NameSpan.Start,
			End:    fs.NameSpan.End,
			Width:  uint8(fs.Width),
			Flags:  len(fs.Flags),
			Idents: emit.Identifiers(fs, opts),
		}
	})
}

// Definitions rebuilds name-only definitions for cross-file checks, with
// spans placed in file.
func (o *Output) Definitions(file source.FileID) []*flagset.Definition {
	return lo.Map(o.Sets, func(cs CachedSet, _ int) *flagset.Definition {
		return &flagset.Definition{
			Name:     cs.Name,
			NameSpan: source.Span{File: file, Start: cs.Start, End: cs.End},
		}
	})
}

// Payload converts the output for the disk cache.
func (o *Output) Payload() *GenPayload {
	return &GenPayload{Package: o.Package, Code: o.Code, Sets: o.Sets}
}

// OutputFromPayload rebuilds an Output for src from a cache entry.
func OutputFromPayload(src string, s project.Settings, p *GenPayload) *Output {
	return &Output{
		Source:  src,
		Path:    emit.OutputPath(src, s.Suffix),
		Package: p.Package,
		Code:    p.Code,
		Sets:    p.Sets,
	}
}

// WriteOutput writes code to path unless the file already holds exactly
// that content, so unchanged inputs keep their mtime.
func WriteOutput(path string, code []byte) (written bool, err error) {
	if prev, err := os.ReadFile(path); err == nil && bytes.Equal(prev, code) {
		return false, nil
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".flagger-*")
	if err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(code); err != nil {
		_ = tmp.Close()
		return false, errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	return true, nil
}
