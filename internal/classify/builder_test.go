package classify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanPaths(t *testing.T, paths ...string) *Result {
	t.Helper()
	res, err := Scan(context.Background(), paths, Options{Workers: 2})
	require.NoError(t, err)
	return res
}

func dupPaths(res *Result) [][]string {
	out := make([][]string, len(res.Duplicates))
	for i, g := range res.Duplicates {
		out[i] = g.Paths
	}
	return out
}

func uniquePaths(res *Result) []string {
	out := make([]string, len(res.Unique))
	for i, m := range res.Unique {
		out[i] = m.Path
	}
	return out
}

func TestScan_DuplicateFilePair(t *testing.T) {
	tmpDir := t.TempDir()
	x := writeFile(t, tmpDir, "A/x.txt", "hello")
	y := writeFile(t, tmpDir, "B/y.txt", "hello")

	res := scanPaths(t, x, y)

	require.Len(t, res.Duplicates, 1)
	g := res.Duplicates[0]
	assert.False(t, g.Dir)
	assert.Equal(t, int64(5), g.Size)
	assert.Equal(t, []string{x, y}, g.Paths)
	assert.Empty(t, res.Unique)
}

func TestScan_DuplicateDirsSubsumeTheirFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "A/x.txt", "hello")
	writeFile(t, tmpDir, "B/y.txt", "hello")

	res := scanPaths(t, filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B"))

	require.Len(t, res.Duplicates, 1, "the file pair inside the dup dirs is implied, not reported")
	g := res.Duplicates[0]
	assert.True(t, g.Dir)
	assert.Equal(t, []string{filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B")}, g.Paths)
	assert.Equal(t, int64(5), g.Size)
}

func TestScan_ExtraChildBreaksDirEquality(t *testing.T) {
	tmpDir := t.TempDir()
	x := writeFile(t, tmpDir, "A/x.txt", "hello")
	y := writeFile(t, tmpDir, "B/y.txt", "hello")
	writeFile(t, tmpDir, "B/extra.txt", "something else")

	res := scanPaths(t, filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B"))

	require.Len(t, res.Duplicates, 1)
	g := res.Duplicates[0]
	assert.False(t, g.Dir, "dirs with different child counts are not duplicates")
	assert.Equal(t, []string{x, y}, g.Paths)

	assert.Contains(t, uniquePaths(res), filepath.Join(tmpDir, "B", "extra.txt"))
}

func TestScan_NestedDuplicateTreesPruned(t *testing.T) {
	tmpDir := t.TempDir()
	for _, root := range []string{"A", "B"} {
		writeFile(t, tmpDir, root+"/f1", "one")
		writeFile(t, tmpDir, root+"/sub/f2", "two")
		writeFile(t, tmpDir, root+"/sub/deep/f3", "three")
	}

	res := scanPaths(t, filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B"))

	// Only the top pair is reported; sub/, deep/ and every file are
	// implied by it.
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, [][]string{{filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B")}}, dupPaths(res))
}

func TestScan_LoneSurvivorKeepsItsClass(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "A/x.txt", "hello")
	writeFile(t, tmpDir, "B/x.txt", "hello")
	stray := writeFile(t, tmpDir, "stray.txt", "hello")

	res := scanPaths(t, tmpDir)

	// A and B are duplicate dirs; their x.txt members are implied. The
	// stray copy sits under no reported directory, so its class must
	// survive with the full member list: the stray is neither unique
	// nor allowed to vanish from the result.
	require.Len(t, res.Duplicates, 2)
	dirs := res.Duplicates[0]
	assert.True(t, dirs.Dir)
	assert.Equal(t, []string{filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B")}, dirs.Paths)

	files := res.Duplicates[1]
	assert.False(t, files.Dir)
	assert.Len(t, files.Paths, 3)
	assert.Contains(t, files.Paths, stray)
	assert.NotContains(t, uniquePaths(res), stray)
}

func TestScan_PartiallySubsumedDirClass(t *testing.T) {
	tmpDir := t.TempDir()
	for _, root := range []string{"A", "B"} {
		writeFile(t, tmpDir, root+"/f1", "alpha")
		writeFile(t, tmpDir, root+"/sub/f2", "beta")
	}
	writeFile(t, tmpDir, "C/f2", "beta")

	res := scanPaths(t, tmpDir)

	require.Len(t, res.Duplicates, 2)
	top := res.Duplicates[0]
	assert.True(t, top.Dir)
	assert.Equal(t, []string{filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B")}, top.Paths)

	// C equals the sub/ trees inside the reported pair; its class keeps
	// all members even though only C escaped subsumption.
	sub := res.Duplicates[1]
	assert.True(t, sub.Dir)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "A", "sub"),
		filepath.Join(tmpDir, "B", "sub"),
		filepath.Join(tmpDir, "C"),
	}, sub.Paths)
}

func TestScan_DuplicatesSortedBySizeDesc(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "small1", "aa")
	writeFile(t, tmpDir, "small2", "aa")
	writeFile(t, tmpDir, "big1", "a much longer payload")
	writeFile(t, tmpDir, "big2", "a much longer payload")

	res := scanPaths(t, tmpDir)

	require.Len(t, res.Duplicates, 2)
	assert.Greater(t, res.Duplicates[0].Size, res.Duplicates[1].Size)
}

func TestScan_RenameDoesNotChangeClass(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "A/original.txt", "payload")
	writeFile(t, tmpDir, "B/renamed.bin", "payload")

	res := scanPaths(t, tmpDir)

	// A and B are duplicate dirs despite wildly different child names.
	require.Len(t, res.Duplicates, 1)
	assert.True(t, res.Duplicates[0].Dir)
}

func TestScan_ZeroByteVsNonEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "empty1", "")
	writeFile(t, tmpDir, "empty2", "")
	writeFile(t, tmpDir, "full", "12345")

	res := scanPaths(t, tmpDir)

	require.Len(t, res.Duplicates, 1)
	g := res.Duplicates[0]
	assert.Len(t, g.Paths, 2)
	assert.NotContains(t, g.Paths, filepath.Join(tmpDir, "full"))
}

func TestScan_UnreadableRootIsIndeterminate(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "ok.txt", "fine")

	res := scanPaths(t, tmpDir, filepath.Join(tmpDir, "../does-not-exist"))

	require.NotEmpty(t, res.Errors)
	assert.NotEmpty(t, res.Indeterminate, "an unreadable path is neither unique nor duplicate")
	for _, m := range res.Indeterminate {
		assert.NotContains(t, uniquePaths(res), m.Path)
	}
}

func TestScan_FailFast(t *testing.T) {
	_, err := Scan(context.Background(), []string{"/does/not/exist"}, Options{FailFast: true})
	require.Error(t, err)
}

func TestScan_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "f", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, []string{tmpDir}, Options{})
	require.Error(t, err)
}

func TestScan_CommonRoot(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "A/f", "1")
	writeFile(t, tmpDir, "B/g", "2")

	res := scanPaths(t, filepath.Join(tmpDir, "A"), filepath.Join(tmpDir, "B"))
	assert.Equal(t, filepath.Clean(tmpDir), res.Root)
}

func TestScan_SkippedEntriesReported(t *testing.T) {
	tmpDir := t.TempDir()
	target := writeFile(t, tmpDir, "real.txt", "content")
	link := filepath.Join(tmpDir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("Cannot create symlink: %v", err)
	}

	res, err := Scan(context.Background(), []string{tmpDir}, Options{Ignore: []string{".DS_Store"}})
	require.NoError(t, err)

	assert.Equal(t, []string{link}, res.Symlinks)
	// The link never enters comparison, so the real file stays unique.
	assert.Contains(t, uniquePaths(res), target)
	assert.Empty(t, res.Duplicates)
}

func TestNormalizeRoots_DropsDuplicatesAndNested(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	roots, err := NormalizeRoots([]string{tmpDir, sub, tmpDir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean(tmpDir)}, roots,
		"nested and repeated inputs must collapse to one physical root")
}

func TestNormalizeRoots_Empty(t *testing.T) {
	_, err := NormalizeRoots(nil)
	require.Error(t, err)
}

func TestNormalizeRoots_SiblingsKept(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a")
	ab := filepath.Join(tmpDir, "ab") // prefix of the name, not a parent dir
	require.NoError(t, os.MkdirAll(a, 0755))
	require.NoError(t, os.MkdirAll(ab, 0755))

	roots, err := NormalizeRoots([]string{a, ab})
	require.NoError(t, err)
	assert.Equal(t, []string{a, ab}, roots)
}
