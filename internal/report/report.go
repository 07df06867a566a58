// Package report renders a scan result as human-readable text. The
// classification engine itself emits nothing; this is its only output
// surface.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"finddup-go/internal/classify"
)

// Format renders the full report. Paths are shown relative to the
// common root of all search paths, directories with a trailing
// separator. Duplicate sets come first, largest first; unique entries
// follow alphabetically; skipped and unreadable paths are listed last
// so nothing disappears silently. Indeterminate directories get their
// own section: a read error below them means they are neither
// confirmed duplicate nor confirmed unique.
func Format(res *classify.Result) string {
	var b strings.Builder

	if res.Root != string(filepath.Separator) {
		fmt.Fprintf(&b, "All file paths referenced from:\n%s\n", res.Root)
	}

	b.WriteString("\nDuplicate Files/Directories:\n")
	for _, group := range res.Duplicates {
		fmt.Fprintf(&b, "Duplicate set (%s each)\n", humanize.IBytes(uint64(group.Size)))
		for _, path := range group.Paths {
			fmt.Fprintf(&b, "  %s\n", displayPath(path, res.Root, group.Dir))
		}
	}
	if len(res.Duplicates) == 0 {
		b.WriteString("  (none)\n")
	}

	b.WriteString("\nUnique Files/Directories:\n")
	for _, m := range res.Unique {
		fmt.Fprintf(&b, "%s\n", displayPath(m.Path, res.Root, m.Dir))
	}

	if len(res.Errors) > 0 {
		b.WriteString("\nUnreadable Files (ignored)\n")
		for _, perr := range res.Errors {
			fmt.Fprintf(&b, "  %s\n      %s: %v\n", displayPath(perr.Path, res.Root, false), perr.Kind, perr.Err)
		}
	}
	if len(res.Special) > 0 {
		b.WriteString("\nSpecial Files (ignored)\n")
		writePaths(&b, res.Special, res.Root)
	}
	if len(res.Symlinks) > 0 {
		b.WriteString("\nSymbolic Links (ignored)\n")
		writePaths(&b, res.Symlinks, res.Root)
	}
	if len(res.Ignored) > 0 {
		b.WriteString("\nIgnored Files\n")
		writePaths(&b, res.Ignored, res.Root)
	}

	if dirs := indeterminateDirs(res); len(dirs) > 0 {
		b.WriteString("\nUnknown Dirs\n")
		for _, path := range dirs {
			fmt.Fprintf(&b, "%s\n", displayPath(path, res.Root, true))
		}
	}

	return b.String()
}

func indeterminateDirs(res *classify.Result) []string {
	var dirs []string
	for _, m := range res.Indeterminate {
		if m.Dir {
			dirs = append(dirs, m.Path)
		}
	}
	return dirs
}

func writePaths(b *strings.Builder, paths []string, root string) {
	for _, path := range paths {
		fmt.Fprintf(b, "  %s\n", displayPath(path, root, false))
	}
}

// displayPath renders the path relative to root, keeping absolute paths
// when the common root is the filesystem root itself.
func displayPath(path, root string, dir bool) string {
	out := path
	if root != string(filepath.Separator) {
		if rel, err := filepath.Rel(root, path); err == nil {
			out = rel
		}
	}
	if dir && !strings.HasSuffix(out, string(filepath.Separator)) {
		out += string(filepath.Separator)
	}
	return out
}
