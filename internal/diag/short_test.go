package diag

import (
	"testing"

	"flagger/internal/source"
)

func TestFormatShortDiagnosticsSortsAndFlattens(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	perms := fs.Add("/workspace/perms/perms.flg", []byte("a\nb\n"), 0)
	modes := fs.Add("/workspace/modes.flg", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     FlgUnresolvedDiscriminant,
			Message:  "another",
			Primary:  source.Span{File: perms, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: perms, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: perms, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     FlgEmptyFile,
			Message:  "no sets",
			Primary:  source.Span{File: modes},
		},
	}

	want := "warning FLG3007 modes.flg:1:1 no sets\n" +
		"error SYN2001 perms/perms.flg:1:1 first line second\n" +
		"error FLG3003 perms/perms.flg:2:1 another\n" +
		"note SYN2001 perms/perms.flg:2:1 note line"
	if got := FormatShortDiagnostics(diags, fs, true); got != want {
		t.Fatalf("short diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}

	withoutNotes := "warning FLG3007 modes.flg:1:1 no sets\n" +
		"error SYN2001 perms/perms.flg:1:1 first line second\n" +
		"error FLG3003 perms/perms.flg:2:1 another"
	if got := FormatShortDiagnostics(diags, fs, false); got != withoutNotes {
		t.Fatalf("without notes:\n%s", got)
	}
}

func TestFormatShortDiagnosticsUnlocated(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("a.flg", []byte("flags A {}"))
	diags := []*Diagnostic{{
		Severity: SevInfo,
		Code:     ObsTimings,
		Message:  "timings (file): total 1.00 ms",
		Notes:    []Note{{Msg: `{"kind":"file"}`}},
	}}
	if got := FormatShortDiagnostics(diags, fs, true); got != "info OBS6001 -:0:0 timings (file): total 1.00 ms" {
		t.Fatalf("short = %q", got)
	}
}

func TestFormatShortDiagnosticsEmpty(t *testing.T) {
	if got := FormatShortDiagnostics(nil, source.NewFileSet(), true); got != "" {
		t.Fatalf("got %q", got)
	}
}
