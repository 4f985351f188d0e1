package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"flagger/internal/source"
)

// shortLine is one rendered entry of the short format:
//
//	error FLG3003 perms/perms.flg:7:5 cannot determine the value of `Later`
type shortLine struct {
	sev  string
	code string
	path string
	line uint32
	col  uint32
	msg  string
}

func (l shortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.line, l.col, l.msg)
}

func compareShort(a, b shortLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatShortDiagnostics renders one line per diagnostic (and per located note
// when includeNotes is set), sorted by position so the output is stable across
// runs. Paths are relative to the file set's base dir. Unlocated diagnostics
// use "-" as their path. The result has no trailing newline.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	lines := make([]shortLine, 0, len(diags))
	for _, d := range diags {
		if d.Unlocated() {
			lines = append(lines, shortLine{sev: severityLabel(d.Severity), code: d.Code.ID(), path: "-", msg: flatten(d.Message)})
			continue
		}
		if l, ok := locate(fs, d.Primary); ok {
			l.sev, l.code, l.msg = severityLabel(d.Severity), d.Code.ID(), flatten(d.Message)
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			if l, ok := locate(fs, note.Span); ok {
				l.sev, l.code, l.msg = "note", d.Code.ID(), flatten(note.Msg)
				lines = append(lines, l)
			}
		}
	}
	slices.SortStableFunc(lines, compareShort)

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

// locate резолвит span; невалидный span (чужой FileSet) пропускаем
func locate(fs *source.FileSet, span source.Span) (l shortLine, ok bool) {
	defer func() {
		if recover() != nil {
			l, ok = shortLine{}, false
		}
	}()
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	path := filepath.ToSlash(file.FormatPath("relative", fs.BaseDir()))
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return shortLine{path: path, line: start.Line, col: start.Col}, true
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func flatten(msg string) string {
	msg = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg)
	return strings.TrimSpace(msg)
}
