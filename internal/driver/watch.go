package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// DefaultDebounce groups editor save bursts into one run.
const DefaultDebounce = 150 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Debounce time.Duration
	// OnError receives watcher errors; nil drops them.
	OnError func(error)
}

// Watch calls onChange with the sorted .flg paths touched under root,
// after each quiet period of Debounce, until ctx is done. root may be a
// single .flg file. Removed files are reported too: the callback decides
// what a vanished input means.
func Watch(ctx context.Context, root string, opts WatchOptions, onChange func(ctx context.Context, paths []string) error) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	info, err := statPath(root)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "start watcher")
	}
	defer w.Close()

	only := ""
	if info.IsDir() {
		if err := addTree(w, root); err != nil {
			return err
		}
	} else {
		only = filepath.Clean(root)
		if err := w.Add(filepath.Dir(root)); err != nil {
			return errors.Wrapf(err, "watch %s", filepath.Dir(root))
		}
	}

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(opts.Debounce)
	)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 && info.IsDir() {
				// новые подкаталоги тоже надо слушать
				if st, err := statPath(ev.Name); err == nil && st.IsDir() && !skipDir(filepath.Base(ev.Name)) {
					if err := addTree(w, ev.Name); err != nil && opts.OnError != nil {
						opts.OnError(err)
					}
					continue
				}
			}
			if !relevant(ev, only) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}
			timer.Reset(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if opts.OnError != nil {
				opts.OnError(errors.Wrap(err, "watch"))
			}

		case <-timer.C:
			paths := lo.Keys(pending)
			sort.Strings(paths)
			clear(pending)
			if err := onChange(ctx, paths); err != nil {
				return err
			}
		}
	}
}

func relevant(ev fsnotify.Event, only string) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if only != "" {
		return filepath.Clean(ev.Name) == only
	}
	return strings.HasSuffix(ev.Name, Ext)
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}
