package driver

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagger/internal/flagset"
)

func TestDiagnoseScenario(t *testing.T) {
	path := writeFlg(t, t.TempDir(), "perms.flg", scenarioSrc)

	res, err := Diagnose(context.Background(), path, DiagnoseOptions{MaxDiagnostics: 10})
	require.NoError(t, err)
	require.True(t, res.OK(), messages(res.Bag))

	assert.Equal(t, "perms", res.Package)
	require.Len(t, res.Defs, 1)
	set, ok := res.Set("Example")
	require.True(t, ok)
	assert.Equal(t, flagset.Width8, set.Width)

	got := map[string]uint64{}
	for _, f := range set.Flags {
		got[f.Name] = f.Value.Lo
	}
	assert.Equal(t, map[string]uint64{"FirstAndSecond": 3, "First": 1, "Second": 2, "Third": 4}, got)
	assert.Equal(t, uint64(255), set.AllFlag().Bits.Lo)
}

func TestDiagnoseReportsEveryBrokenSet(t *testing.T) {
	src := `flags Loop { A = Self::B, B = Self::A }
flags Ok { X = 1 }
flags Bad { Y = 1 + 2 }
flags Ok { Z = 2 }
`
	path := writeFlg(t, t.TempDir(), "broken.flg", src)

	res, err := Diagnose(context.Background(), path, DiagnoseOptions{})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.ElementsMatch(t, []string{"FLG3003", "FLG3002", "FLG3006"}, codes(res.Bag), messages(res.Bag))

	// the first Ok survives, its duplicate does not
	require.Len(t, res.Sets, 1)
	assert.Equal(t, "Ok", res.Sets[0].Name)
	assert.Equal(t, "X", res.Sets[0].Flags[0].Name)
}

func TestDiagnosePhaseNotesCountErrors(t *testing.T) {
	src := `flags Loop { A = Self::B, B = Self::A }
flags Ok { X = 1 }
flags Ok { Z = 2 }
`
	path := writeFlg(t, t.TempDir(), "broken.flg", src)

	res, err := Diagnose(context.Background(), path, DiagnoseOptions{EnableTimings: true})
	require.NoError(t, err)
	require.NotNil(t, res.Timer)

	notes := map[string]string{}
	for _, ph := range res.Timer.Report().Phases {
		notes[ph.Name] = ph.Note
	}
	assert.Equal(t, "defs=2 errors=1", notes["collect"])
	assert.Contains(t, notes["resolve"], "sets=1 errors=")
}

func TestDiagnoseEmptyFileWarns(t *testing.T) {
	path := writeFlg(t, t.TempDir(), "empty.flg", "package perms\n")

	res, err := Diagnose(context.Background(), path, DiagnoseOptions{})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"FLG3007"}, codes(res.Bag))
	assert.True(t, res.Bag.HasWarnings())
}

func TestDiagnoseSkipResolve(t *testing.T) {
	path := writeFlg(t, t.TempDir(), "loop.flg", `flags Loop { A = Self::A }`)

	res, err := Diagnose(context.Background(), path, DiagnoseOptions{SkipResolve: true})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Len(t, res.Defs, 1)
	assert.Empty(t, res.Sets)
}

func TestDiagnoseTimingsAndObserver(t *testing.T) {
	path := writeFlg(t, t.TempDir(), "perms.flg", scenarioSrc)

	var (
		mu     sync.Mutex
		events []PhaseEvent
	)
	res, err := Diagnose(context.Background(), path, DiagnoseOptions{
		EnableTimings: true,
		Observer: func(ev PhaseEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"OBS6001"}, codes(res.Bag))
	require.NotEmpty(t, res.Bag.Items()[0].Notes)
	assert.Contains(t, res.Bag.Items()[0].Notes[0].Msg, `"kind":"file"`)

	var names []string
	for _, ev := range events {
		if ev.Status == PhaseStart {
			names = append(names, ev.Name)
		}
	}
	assert.Equal(t, []string{"parse", "collect", "resolve"}, names)
	assert.Len(t, events, 6)
}

func TestDiagnoseMissingFile(t *testing.T) {
	_, err := Diagnose(context.Background(), "does/not/exist.flg", DiagnoseOptions{})
	require.Error(t, err)
}

func TestDiagnoseCancelled(t *testing.T) {
	path := writeFlg(t, t.TempDir(), "perms.flg", scenarioSrc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Diagnose(ctx, path, DiagnoseOptions{})
	require.ErrorIs(t, err, context.Canceled)
}
