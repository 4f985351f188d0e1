package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"flagger/internal/diag"
	"flagger/internal/source"
)

// Ext is the source file extension.
const Ext = ".flg"

// ListFiles returns the sorted .flg files under dir. Like the go tool it
// skips directories named testdata or starting with "." or "_".
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, Ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func skipDir(name string) bool {
	return name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Inputs expands path into .flg files: a file is taken as is, a directory
// is walked.
func Inputs(path string) (files []string, isDir bool, err error) {
	info, err := statPath(path)
	if err != nil {
		return nil, false, err
	}
	if !info.IsDir() {
		return []string{path}, false, nil
	}
	files, err = ListFiles(path)
	return files, true, err
}

func statPath(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	return info, nil
}

// Loaded is one input after preloading.
type Loaded struct {
	Path string
	File *source.File
	// Err is the load failure; File is nil then.
	Err error
}

// LoadFiles reads every path into fs sequentially, so that the parallel
// phases afterwards only read from it.
func LoadFiles(fset *source.FileSet, paths []string) []Loaded {
	out := make([]Loaded, len(paths))
	for i, path := range paths {
		out[i].Path = path
		id, err := fset.Load(path)
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].File = fset.Get(id)
	}
	return out
}

// LoadErrorBag wraps a load failure into a one-entry bag.
func LoadErrorBag(path string, err error, maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(&diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOLoadFileError,
		Message:  "failed to load " + path + ": " + err.Error(),
	})
	return bag
}

// Jobs normalises a --jobs value.
func Jobs(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

// DiagnoseDir diagnoses every .flg file under dir in parallel. Results come
// back sorted by path; a file that failed to load gets a result with only an
// IO4001 diagnostic.
func DiagnoseDir(ctx context.Context, dir string, opts DiagnoseOptions, jobs int) (*source.FileSet, []*DiagnoseResult, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fset := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fset, nil, nil
	}
	loaded := LoadFiles(fset, files)

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*DiagnoseResult, len(loaded))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Jobs(jobs, len(loaded)))
	for i, in := range loaded {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if in.Err != nil {
				results[i] = &DiagnoseResult{
					Path:    in.Path,
					FileSet: fset,
					Bag:     LoadErrorBag(in.Path, in.Err, opts.MaxDiagnostics),
				}
				return nil
			}
			res, err := DiagnoseFile(gctx, fset, in.File, opts)
			if err != nil {
				return errors.Wrapf(err, "diagnose %s", in.Path)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fset, nil, err
	}
	return fset, results, nil
}

// MergeBags folds per-file bags into one, sorted and deduplicated.
func MergeBags(maxDiagnostics int, bags ...*diag.Bag) *diag.Bag {
	out := diag.NewBag(maxDiagnostics)
	for _, b := range bags {
		out.Merge(b)
	}
	out.Sort()
	out.Dedup()
	return out
}
