package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Walker enumerates root paths into Entry forests. It is the only part
// of the engine that touches the OS directory primitives; everything
// downstream consumes the Entry model.
type Walker struct {
	ignore []string

	// Errors collects every path error seen while walking, in
	// encounter order. Errored entries also carry their error inline.
	Errors []*PathError

	// FilesSeen counts comparable files, for progress totals.
	FilesSeen int
}

// NewWalker returns a walker skipping base names that match any of the
// given glob patterns.
func NewWalker(ignore []string) *Walker {
	return &Walker{ignore: ignore}
}

// Walk enumerates one root, which may be a file or a directory tree.
// The returned entry is non-nil even on error; a root that cannot be
// stat'ed comes back as an errored entry so the caller can report it
// without conflating it with an empty or missing subtree.
func (w *Walker) Walk(ctx context.Context, root string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Lstat(root)
	if err != nil {
		perr := NewPathError(root, err)
		w.Errors = append(w.Errors, perr)
		return &Entry{Path: root, Kind: KindFile, Err: perr}, nil
	}
	return w.walk(ctx, root, info.Name(), info.Mode().Type(), info)
}

func (w *Walker) walk(ctx context.Context, path, name string, typ fs.FileMode, info fs.FileInfo) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case typ&fs.ModeSymlink != 0:
		return &Entry{Path: path, Kind: KindSymlink}, nil
	case typ.IsDir():
		return w.walkDir(ctx, path)
	case !typ.IsRegular():
		return &Entry{Path: path, Kind: KindSpecial}, nil
	}

	if w.ignored(name) {
		return &Entry{Path: path, Kind: KindIgnored}, nil
	}

	if info == nil {
		var err error
		info, err = os.Lstat(path)
		if err != nil {
			perr := NewPathError(path, err)
			w.Errors = append(w.Errors, perr)
			return &Entry{Path: path, Kind: KindFile, Err: perr}, nil
		}
	}
	w.FilesSeen++
	return &Entry{Path: path, Kind: KindFile, Size: info.Size()}, nil
}

func (w *Walker) walkDir(ctx context.Context, path string) (*Entry, error) {
	dir := &Entry{Path: path, Kind: KindDir}

	dirents, err := os.ReadDir(path)
	if err != nil {
		dir.Err = NewPathError(path, err)
		w.Errors = append(w.Errors, dir.Err)
		return dir, nil
	}

	for _, d := range dirents {
		childPath := filepath.Join(path, d.Name())

		var info fs.FileInfo
		if d.Type().IsRegular() {
			info, err = d.Info()
			if err != nil {
				perr := NewPathError(childPath, err)
				w.Errors = append(w.Errors, perr)
				dir.Children = append(dir.Children, &Entry{Path: childPath, Kind: KindFile, Err: perr})
				continue
			}
		}

		child, err := w.walk(ctx, childPath, d.Name(), d.Type(), info)
		if err != nil {
			return nil, err
		}
		dir.Children = append(dir.Children, child)
	}

	sort.Slice(dir.Children, func(i, j int) bool {
		return dir.Children[i].Path < dir.Children[j].Path
	})
	return dir, nil
}

func (w *Walker) ignored(name string) bool {
	for _, pattern := range w.ignore {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
