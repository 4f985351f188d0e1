package diag

import (
	"testing"

	"flagger/internal/source"
)

func TestDedupReporterDropsRepeats(t *testing.T) {
	b := NewBag(10)
	counter := &CountingReporter{Next: BagReporter{Bag: b}}
	rep := NewDedupReporter(counter)
	sp := source.Span{File: 1, Start: 4, End: 9}

	ReportError(rep, FlgUnresolvedDiscriminant, sp, "cycle through A").Emit()
	ReportError(rep, FlgUnresolvedDiscriminant, sp, "cycle through A").Emit()
	ReportError(rep, FlgUnresolvedDiscriminant, sp, "cycle through B").Emit()
	ReportWarning(rep, FlgEmptyFile, source.Span{File: 1}, "empty").Emit()

	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	// повтор до счётчика не доходит
	if counter.Errors != 2 {
		t.Fatalf("Errors = %d, want 2", counter.Errors)
	}
}

func TestDedupReporterNil(t *testing.T) {
	var r *DedupReporter
	r.Report(FlgUnresolvedDiscriminant, SevError, source.Span{}, "ignored", nil, nil)
	NewDedupReporter(nil).Report(FlgUnresolvedDiscriminant, SevError, source.Span{}, "no sink", nil, nil)
}
