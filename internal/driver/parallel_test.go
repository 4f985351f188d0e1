package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesSkipsLikeGoTool(t *testing.T) {
	dir := t.TempDir()
	writeFlg(t, dir, "b.flg", scenarioSrc)
	writeFlg(t, dir, "a.flg", scenarioSrc)
	writeFlg(t, dir, "sub/c.flg", scenarioSrc)
	writeFlg(t, dir, "notes.txt", "x")
	writeFlg(t, dir, "testdata/skip.flg", scenarioSrc)
	writeFlg(t, dir, "_old/skip.flg", scenarioSrc)
	writeFlg(t, dir, ".git/skip.flg", scenarioSrc)

	files, err := ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.flg"),
		filepath.Join(dir, "b.flg"),
		filepath.Join(dir, "sub", "c.flg"),
	}, files)

	in, isDir, err := Inputs(filepath.Join(dir, "a.flg"))
	require.NoError(t, err)
	assert.False(t, isDir)
	assert.Len(t, in, 1)
}

func TestDiagnoseDirSortedResults(t *testing.T) {
	dir := t.TempDir()
	writeFlg(t, dir, "z.flg", `flags Z { A = 1 }`)
	writeFlg(t, dir, "m.flg", `flags M { A = Self::B }`)
	writeFlg(t, dir, "a.flg", scenarioSrc)

	fset, results, err := DiagnoseDir(context.Background(), dir, DiagnoseOptions{MaxDiagnostics: 20}, 2)
	require.NoError(t, err)
	require.NotNil(t, fset)
	require.Len(t, results, 3)

	var names []string
	for _, r := range results {
		names = append(names, filepath.Base(r.Path))
	}
	assert.Equal(t, []string{"a.flg", "m.flg", "z.flg"}, names)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())

	merged := MergeBags(0, results[0].Bag, results[1].Bag, results[2].Bag)
	assert.Equal(t, []string{"FLG3003"}, codes(merged))
}

func TestJobs(t *testing.T) {
	assert.Equal(t, 1, Jobs(8, 0))
	assert.Equal(t, 3, Jobs(8, 3))
	assert.Equal(t, 2, Jobs(2, 10))
	assert.GreaterOrEqual(t, Jobs(0, 100), 1)
}
