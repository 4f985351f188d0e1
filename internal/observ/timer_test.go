package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerReportMergesPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Track("resolve")("")
		}()
	}
	wg.Wait()
	tm.End(tm.Begin("emit"), "2 sets")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected 2 merged phases, got %+v", rep.Phases)
	}
	if rep.Phases[1].Name != "emit" || rep.Phases[1].Note != "2 sets" {
		t.Fatalf("unexpected second phase: %+v", rep.Phases[1])
	}
	if !strings.Contains(tm.Summary(), "total") {
		t.Fatalf("summary lacks total line")
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(5, "x")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", got)
	}
}

func TestNilTimerTrack(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
}
