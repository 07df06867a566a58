package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"finddup-go/internal/classify"
	"finddup-go/internal/scan"
)

func TestFormat_Sections(t *testing.T) {
	res := &classify.Result{
		Root: "/data",
		Duplicates: []classify.Group{
			{Size: 2048, Dir: true, Paths: []string{"/data/A", "/data/B"}},
			{Size: 5, Paths: []string{"/data/C/x.txt", "/data/C/y.txt"}},
		},
		Unique: []classify.Member{
			{Path: "/data/C", Dir: true},
			{Path: "/data/C/z.txt"},
		},
		Indeterminate: []classify.Member{
			{Path: "/data/locked", Dir: true},
		},
		Symlinks: []string{"/data/link"},
		Errors: []*scan.PathError{
			{Path: "/data/locked/secret", Kind: scan.ErrPermission, Err: assertErr{}},
		},
	}

	out := Format(res)

	assert.Contains(t, out, "All file paths referenced from:\n/data\n")
	assert.Contains(t, out, "Duplicate Files/Directories:")
	assert.Contains(t, out, "Duplicate set (2.0 KiB each)")
	assert.Contains(t, out, "Duplicate set (5 B each)")
	assert.Contains(t, out, "  A/\n  B/\n", "duplicate dirs are relative with a trailing separator")
	assert.Contains(t, out, "  C/x.txt\n  C/y.txt\n")
	assert.Contains(t, out, "Unique Files/Directories:\nC/\nC/z.txt\n")
	assert.Contains(t, out, "Symbolic Links (ignored)\n  link\n")
	assert.Contains(t, out, "Unreadable Files (ignored)\n  locked/secret\n")
	assert.Contains(t, out, "Unknown Dirs\nlocked/\n")
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestFormat_RootOfFilesystemKeepsAbsolutePaths(t *testing.T) {
	res := &classify.Result{
		Root: "/",
		Duplicates: []classify.Group{
			{Size: 10, Paths: []string{"/etc/a", "/var/b"}},
		},
	}

	out := Format(res)

	assert.NotContains(t, out, "All file paths referenced from")
	assert.Contains(t, out, "  /etc/a\n  /var/b\n")
}

func TestFormat_NoDuplicates(t *testing.T) {
	res := &classify.Result{
		Root:   "/data",
		Unique: []classify.Member{{Path: "/data/only.txt"}},
	}

	out := Format(res)

	assert.Contains(t, out, "(none)")
	assert.True(t, strings.Contains(out, "only.txt"))
}
