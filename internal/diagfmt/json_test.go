package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"flagger/internal/diag"
	"flagger/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("perms.flg", []byte(cycleSrc))
	bag := cycleBag(fs, fileID)

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", output.Count)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "FLG3003" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if d.Location == nil {
		t.Fatal("Expected location")
	}
	if d.Location.File != "perms.flg" || d.Location.StartLine != 2 || d.Location.StartCol != 9 {
		t.Errorf("location = %+v", *d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location == nil || d.Notes[0].Location.StartLine != 3 {
		t.Errorf("notes = %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	if e := d.Fixes[0].Edits[0]; e.OldText != "Self::B" || e.NewText != "1" {
		t.Errorf("edit = %+v", e)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("perms.flg", []byte(cycleSrc))
	bag := cycleBag(fs, fileID)

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartByte != 18 || loc.EndByte != 25 {
		t.Errorf("location = %+v", *loc)
	}
	if len(out.Diagnostics[0].Notes) != 0 || len(out.Diagnostics[0].Fixes) != 0 {
		t.Error("notes and fixes must be opt-in")
	}
}

func TestJSONMax(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("perms.flg", []byte(cycleSrc))
	bag := diag.NewBag(10)
	for i := range 5 {
		d := diag.NewError(diag.FlgInvalidExpression, source.Span{File: fileID, Start: uint32(i), End: uint32(i + 1)}, "bad")
		bag.Add(&d)
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if out.Count != 3 || len(out.Diagnostics) != 3 {
		t.Errorf("Expected 3 diagnostics, got %d", out.Count)
	}
}

func TestJSONTimingsKeepPayload(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings (gen): total 1.00 ms").
		WithNote(source.Span{}, `{"kind":"gen"}`)
	bag.Add(&d)

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	got := out.Diagnostics[0]
	if got.Location != nil {
		t.Errorf("timings must not carry a location: %+v", *got.Location)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != `{"kind":"gen"}` || got.Notes[0].Location != nil {
		t.Errorf("notes = %+v", got.Notes)
	}
}
