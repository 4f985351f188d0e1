package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"flagger/internal/diag"
	"flagger/internal/source"
)

func cycleBag(fs *source.FileSet, fileID source.FileID) *diag.Bag {
	bag := diag.NewBag(10)
	d := diag.NewError(diag.FlgUnresolvedDiscriminant, source.Span{File: fileID, Start: 18, End: 25}, "cycle in discriminants of `P`: A -> B -> A").
		WithNote(source.Span{File: fileID, Start: 35, End: 42}, "`B` refers back to `A` here").
		WithFix("give `A` a literal value", diag.FixEdit{Span: source.Span{File: fileID, Start: 18, End: 25}, NewText: "1"})
	bag.Add(&d)
	return bag
}

const cycleSrc = "flags P {\n    A = Self::B,\n    B = Self::A,\n}\n"

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/src/perms.flg", []byte(cycleSrc))
	fs.SetBaseDir("/home/user/project")
	bag := cycleBag(fs, fileID)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/perms.flg:2:9"},
		{"Relative path", PathModeRelative, "src/perms.flg:2:9"},
		{"Basename only", PathModeBasename, "perms.flg:2:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "error FLG3003: cycle") {
				t.Errorf("Expected header with severity and code, got:\n%s", output)
			}
		})
	}
}

func TestPrettyUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("perms.flg", []byte(cycleSrc))
	bag := cycleBag(fs, fileID)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")

	if lines[0] != "perms.flg:2:9: error FLG3003: cycle in discriminants of `P`: A -> B -> A" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != " 2 |     A = Self::B," {
		t.Fatalf("source line = %q", lines[1])
	}
	// Self::B is 7 bytes wide, starting after "    A = "
	if lines[2] != "   |         ^~~~~~~" {
		t.Fatalf("underline = %q", lines[2])
	}
	if strings.Contains(buf.String(), "note:") {
		t.Errorf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("perms.flg", []byte(cycleSrc))
	bag := cycleBag(fs, fileID)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})
	out := buf.String()

	for _, want := range []string{
		"note: perms.flg:3:9: `B` refers back to `A` here",
		" 3 |     B = Self::A,",
		"help: give `A` a literal value",
		`perms.flg:2:9: replace "Self::B" with "1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("perms.flg", []byte(cycleSrc))
	bag := diag.NewBag(1)
	d := diag.NewError(diag.FlgUnresolvedDiscriminant, source.Span{File: fileID, Start: 44, End: 45}, "x")
	bag.Add(&d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 2, PathMode: PathModeBasename})
	out := buf.String()
	for _, want := range []string{" 2 |     A = Self::B,", " 3 |     B = Self::A,", " 4 | }"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing context line %q in:\n%s", want, out)
		}
	}
}

func TestPrettyUnlocated(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	d := diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, "cannot read missing.flg")
	bag.Add(&d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if got := buf.String(); got != "error IO4001: cannot read missing.flg\n" {
		t.Fatalf("got %q", got)
	}
}

func TestCaretColumnsWide(t *testing.T) {
	// 'ж' is two bytes but one column; '世' is three bytes and two columns
	line := "ж世 X"
	pad, mark := caretColumns(line, 7, 8)
	if pad != 4 || mark != "^" {
		t.Fatalf("pad=%d mark=%q", pad, mark)
	}
	pad, mark = caretColumns("\tAB", 2, 4)
	if pad != tabWidth || mark != "^~" {
		t.Fatalf("tab: pad=%d mark=%q", pad, mark)
	}
}
