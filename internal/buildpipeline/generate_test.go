package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagger/internal/driver"
	"flagger/internal/project"
)

const permsSrc = `package perms

flags Permission {
    Read = 1,
    Write = 2,
    ReadWrite = Self::Read | Self::Write,
}
`

func write(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func request(dir string) *GenRequest {
	return &GenRequest{
		Path:           dir,
		Settings:       project.DefaultSettings(),
		ToolVersion:    "test",
		Jobs:           2,
		MaxDiagnostics: 50,
	}
}

func TestGenerateDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "perms.flg", permsSrc)
	write(t, dir, "modes.flg", "package perms\nflags Mode { Fast = 1, Safe = 0x100 }\n")

	sink := &RecordingSink{}
	req := request(dir)
	req.Progress = sink
	res, err := Generate(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.HasErrors())

	require.Len(t, res.Files, 2)
	assert.Equal(t, filepath.Join(dir, "modes.flg"), res.Files[0].Path)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "modes_flags.go"),
		filepath.Join(dir, "perms_flags.go"),
	}, res.Written())

	code, err := os.ReadFile(filepath.Join(dir, "modes_flags.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "type Mode uint16")

	var queued, written int
	for _, ev := range sink.Events() {
		switch {
		case ev.Status == StatusQueued:
			queued++
		case ev.Stage == StageWrite && ev.Status == StatusDone:
			written++
		}
	}
	assert.Equal(t, 2, queued)
	assert.Equal(t, 2, written)
	assert.True(t, res.Timings.Has(StageResolve))
}

func TestGenerateKeepsGoodFilesWhenOneFails(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "good.flg", permsSrc)
	write(t, dir, "bad.flg", "flags Bad { A = Self::B }\n")

	res, err := Generate(context.Background(), request(dir))
	require.NoError(t, err)
	assert.True(t, res.HasErrors())
	assert.Equal(t, []string{filepath.Join(dir, "good_flags.go")}, res.Written())

	_, err = os.Stat(filepath.Join(dir, "bad_flags.go"))
	assert.True(t, os.IsNotExist(err), "no partial output for a failing file")
}

func TestGenerateDuplicateSetAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.flg", permsSrc)
	write(t, dir, "b.flg", "package perms\nflags Permission { Exec = 4 }\n")
	write(t, dir, "sub/c.flg", "package sub\nflags Permission { Exec = 4 }\n")

	res, err := Generate(context.Background(), request(dir))
	require.NoError(t, err)
	require.True(t, res.HasErrors())

	var dup int
	for _, d := range res.Bag.Items() {
		if d.Code.ID() == "FLG3006" {
			dup++
			require.Len(t, d.Notes, 1)
			assert.NotEqual(t, d.Primary.File, d.Notes[0].Span.File, "note points at the other file")
		}
	}
	assert.Equal(t, 1, dup, "other directories are separate packages")
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a_flags.go"),
		filepath.Join(dir, "sub", "c_flags.go"),
	}, res.Written())
}

func TestGenerateBareNamesCollideAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "perms.flg", "package perms\nflags Permission { Read = 1 }\n")
	write(t, dir, "modes.flg", "package perms\nflags Mode { Fast = 1 }\n")

	req := request(dir)
	req.Settings.Prefix = false
	res, err := Generate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.HasErrors(), "both files would declare NoneFlag and AllFlag")

	items := res.Bag.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "FLG3008", items[0].Code.ID())
	assert.Contains(t, items[0].Message, `"NoneFlag"`)
	require.Len(t, items[0].Notes, 1)
	assert.NotEqual(t, items[0].Primary.File, items[0].Notes[0].Span.File)

	assert.Equal(t, []string{filepath.Join(dir, "modes_flags.go")}, res.Written())
	_, err = os.Stat(filepath.Join(dir, "perms_flags.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGeneratePrefixedJoinCollidesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.flg", "package perms\nflags A { BC = 1 }\n")
	write(t, dir, "b.flg", "package perms\nflags AB { C = 2 }\n")

	res, err := Generate(context.Background(), request(dir))
	require.NoError(t, err)
	require.True(t, res.HasErrors())

	items := res.Bag.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "FLG3008", items[0].Code.ID())
	assert.Contains(t, items[0].Message, `AB::C generates identifier "ABC", already declared by A::BC`)
	assert.Equal(t, []string{filepath.Join(dir, "a_flags.go")}, res.Written())
}

func TestGenerateDistinctPrefixedNamesShareDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "perms.flg", "package perms\nflags Permission { Read = 1 }\n")
	write(t, dir, "modes.flg", "package perms\nflags Mode { Read = 1 }\n")

	res, err := Generate(context.Background(), request(dir))
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
	assert.Len(t, res.Written(), 2)
}

func TestGenerateUsesCache(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "perms.flg", permsSrc)
	cache, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	req := request(dir)
	req.Cache = cache
	first, err := Generate(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.HasErrors())
	assert.False(t, first.Files[0].Cached)

	require.NoError(t, os.Remove(filepath.Join(dir, "perms_flags.go")))
	second, err := Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Files[0].Cached)
	assert.True(t, second.Files[0].Written)
	assert.Equal(t, first.Files[0].Output.Code, second.Files[0].Output.Code)
}

func TestGenerateDryRunAndOutputOverride(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "perms.flg", permsSrc)

	req := request(path)
	req.DryRun = true
	req.Output = filepath.Join(dir, "custom.go")
	res, err := Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, req.Output, res.Files[0].Output.Path)
	assert.Empty(t, res.Written())
	_, err = os.Stat(req.Output)
	assert.True(t, os.IsNotExist(err))

	dirReq := request(dir)
	dirReq.Output = "x.go"
	_, err = Generate(context.Background(), dirReq)
	assert.True(t, errors.Is(err, ErrOutputNeedsFile))
}

func TestGenerateTimingsDiagnostic(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "perms.flg", permsSrc)

	req := request(dir)
	req.EnableTimings = true
	res, err := Generate(context.Background(), req)
	require.NoError(t, err)

	var found bool
	for _, d := range res.Bag.Items() {
		if d.Code.ID() == "OBS6001" {
			found = true
			assert.Contains(t, d.Notes[0].Msg, `"kind":"gen"`)
		}
	}
	assert.True(t, found)
}

func TestGenerateCancelled(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "perms.flg", permsSrc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, request(dir))
	assert.ErrorIs(t, err, context.Canceled)
}
