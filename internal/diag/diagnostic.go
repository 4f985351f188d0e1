package diag

import (
	"flagger/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type FixEdit struct {
	Span    source.Span
	NewText string
}

type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Unlocated reports diagnostics whose Primary span carries no position:
// load failures and timing reports.
func (d *Diagnostic) Unlocated() bool {
	return d.Code == IOLoadFileError || d.Code == ObsTimings
}
