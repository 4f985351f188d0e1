package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("perms.flg", []byte("flags A {}"), 0)
	id2 := fs.Add("perms.flg", []byte("flags B {}"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("perms.flg")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "flags A {}" {
		t.Fatalf("old version content changed: %q", got)
	}
	if fs.Len() != 2 {
		t.Fatalf("Len = %d, want 2", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.flg", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx = %v, want %v", file.LineIdx, expected)
	}
	for i, v := range expected {
		if file.LineIdx[i] != v {
			t.Fatalf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], v)
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Fatal("expected FileVirtual flag")
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.flg")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("flags X {\r\n  A = 1,\r\n}\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "flags X {\n  A = 1,\n}\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.flg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveAndGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.flg", []byte("flags X {\n  A = 1,\n}"))

	start, end := fs.Resolve(Span{File: id, Start: 12, End: 13})
	if start != (LineCol{Line: 2, Col: 3}) || end != (LineCol{Line: 2, Col: 4}) {
		t.Fatalf("Resolve = %v..%v", start, end)
	}

	f := fs.Get(id)
	tests := map[uint32]string{0: "", 1: "flags X {", 2: "  A = 1,", 3: "}", 4: ""}
	for line, want := range tests {
		if got := f.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
	if got := fs.Text(Span{File: id, Start: 12, End: 13}); got != "A" {
		t.Fatalf("Text = %q, want A", got)
	}
}

func TestFormatPath(t *testing.T) {
	f := &File{Path: "/home/user/project/defs/perms.flg"}
	if got := f.FormatPath("basename", ""); got != "perms.flg" {
		t.Fatalf("basename = %q", got)
	}
	if got := f.FormatPath("relative", "/home/user/project"); got != "defs/perms.flg" {
		t.Fatalf("relative = %q", got)
	}
	if got := f.FormatPath("unknown", ""); got != f.Path {
		t.Fatalf("default = %q", got)
	}
}
