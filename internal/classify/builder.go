package classify

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"finddup-go/internal/scan"
)

// Options configures one scan.
type Options struct {
	// Workers bounds the digest pool. Zero means one.
	Workers int
	// FailFast aborts the scan on the first path error instead of
	// collecting and continuing.
	FailFast bool
	// Ignore is the set of base-name glob patterns to skip.
	Ignore []string
	// Progress, when non-nil, is driven through the digest phase.
	Progress Progress
}

// Member is one reported path.
type Member struct {
	Path string
	Dir  bool
}

// Group is one duplicate set: two or more paths with identical content.
// Size is the byte size of each member (for a directory, the sum of its
// regular descendant files).
type Group struct {
	Size  int64
	Dir   bool
	Paths []string
}

// Result is the final partition of everything encountered: duplicate
// groups, unique entries, indeterminate entries (read errors make an
// entry neither duplicate nor unique), and the skipped entries that
// never enter comparison.
type Result struct {
	// Root is the lowest common parent of all search roots; report
	// paths are rendered relative to it.
	Root string

	Duplicates    []Group
	Unique        []Member
	Indeterminate []Member

	Symlinks []string
	Special  []string
	Ignored  []string

	Errors []*scan.PathError
}

// Scan walks the given search paths, classifies every file and
// directory into content-equivalence classes, and prunes redundant
// duplicate reports. It is the one place aware that inputs may repeat
// or nest: paths are de-duplicated and nested ones dropped before any
// enumeration, so no physical entry is counted twice.
func Scan(ctx context.Context, paths []string, opts Options) (*Result, error) {
	roots, err := NormalizeRoots(paths)
	if err != nil {
		return nil, err
	}

	w := scan.NewWalker(opts.Ignore)
	forest := make([]*scan.Entry, 0, len(roots))
	for _, root := range roots {
		entry, err := w.Walk(ctx, root)
		if err != nil {
			return nil, err
		}
		forest = append(forest, entry)
	}
	if opts.FailFast && len(w.Errors) > 0 {
		return nil, w.Errors[0]
	}

	c := NewClassifier()
	if err := c.GroupFiles(ctx, forest, opts.Workers, opts.FailFast, opts.Progress); err != nil {
		return nil, err
	}
	c.GroupDirs(forest)

	res := buildResult(roots, forest, c)
	res.Errors = append(res.Errors, w.Errors...)
	res.Errors = append(res.Errors, c.Errors...)
	sort.Slice(res.Errors, func(i, j int) bool {
		return res.Errors[i].Path < res.Errors[j].Path
	})
	return res, nil
}

// NormalizeRoots converts search paths to absolute, removes exact
// duplicates, and drops paths nested inside another search path.
func NormalizeRoots(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, errors.New("no search paths given")
	}

	set := mapset.NewSet[string]()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		set.Add(filepath.Clean(abs))
	}

	all := set.ToSlice()
	sep := string(filepath.Separator)
	roots := make([]string, 0, len(all))
	for _, p := range all {
		nested := false
		for _, q := range all {
			if p != q && strings.HasPrefix(p, q+sep) {
				nested = true
				break
			}
		}
		if !nested {
			roots = append(roots, p)
		}
	}
	sort.Strings(roots)
	return roots, nil
}

func buildResult(roots []string, forest []*scan.Entry, c *Classifier) *Result {
	res := &Result{Root: commonRoot(roots, forest)}

	for _, root := range forest {
		collectSkipped(root, res)
	}

	// Split classes by kind; map iteration order is immaterial because
	// every output list is sorted below.
	var dupDirs, dupFiles []ClassID
	for id := ClassID(0); id < c.nextID; id++ {
		members := c.members[id]
		switch {
		case len(members) == 0:
		case len(members) == 1:
			res.Unique = append(res.Unique, Member{Path: members[0].Path, Dir: members[0].IsDir()})
		case members[0].IsDir():
			dupDirs = append(dupDirs, id)
		default:
			dupFiles = append(dupFiles, id)
		}
	}

	// Pruning: accept duplicate-directory classes shallowest first, so
	// an entry whose nearest reported ancestor is already a duplicate
	// directory is suppressed rather than reported again.
	sort.Slice(dupDirs, func(i, j int) bool {
		return minDepth(c.members[dupDirs[i]]) < minDepth(c.members[dupDirs[j]])
	})

	reported := make(map[string]bool)
	for _, id := range dupDirs {
		members := c.members[id]
		kept := unsubsumed(members, reported)
		if len(kept) == 0 {
			// Every member sits under a reported duplicate directory;
			// the group is implied.
			continue
		}
		if len(kept) == 1 {
			// A lone survivor still duplicates content under the
			// reported directories. Keep the full set so the survivor
			// never vanishes from the partition: it is neither unique
			// nor under a reported ancestor itself.
			kept = members
		}
		paths := make([]string, len(kept))
		for i, m := range kept {
			paths[i] = m.Path
			reported[m.Path] = true
		}
		sort.Strings(paths)
		res.Duplicates = append(res.Duplicates, Group{
			Size:  c.dirSize[kept[0]],
			Dir:   true,
			Paths: paths,
		})
	}

	for _, id := range dupFiles {
		members := c.members[id]
		kept := unsubsumed(members, reported)
		if len(kept) == 0 {
			continue
		}
		if len(kept) == 1 {
			kept = members
		}
		paths := make([]string, len(kept))
		for i, m := range kept {
			paths[i] = m.Path
		}
		sort.Strings(paths)
		res.Duplicates = append(res.Duplicates, Group{
			Size:  kept[0].Size,
			Paths: paths,
		})
	}

	for e := range c.indeterminate {
		res.Indeterminate = append(res.Indeterminate, Member{Path: e.Path, Dir: e.IsDir()})
	}

	sort.Slice(res.Duplicates, func(i, j int) bool {
		a, b := res.Duplicates[i], res.Duplicates[j]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.Paths[0] < b.Paths[0]
	})
	sort.Slice(res.Unique, func(i, j int) bool {
		return res.Unique[i].Path < res.Unique[j].Path
	})
	sort.Slice(res.Indeterminate, func(i, j int) bool {
		return res.Indeterminate[i].Path < res.Indeterminate[j].Path
	})
	sort.Strings(res.Symlinks)
	sort.Strings(res.Special)
	sort.Strings(res.Ignored)

	return res
}

// unsubsumed filters out members that sit below an already reported
// duplicate directory.
func unsubsumed(members []*scan.Entry, reported map[string]bool) []*scan.Entry {
	kept := make([]*scan.Entry, 0, len(members))
	for _, m := range members {
		if !underReported(m.Path, reported) {
			kept = append(kept, m)
		}
	}
	return kept
}

func underReported(path string, reported map[string]bool) bool {
	for {
		parent := filepath.Dir(path)
		if parent == path {
			return false
		}
		if reported[parent] {
			return true
		}
		path = parent
	}
}

func minDepth(members []*scan.Entry) int {
	depth := -1
	for _, m := range members {
		d := strings.Count(m.Path, string(filepath.Separator))
		if depth < 0 || d < depth {
			depth = d
		}
	}
	return depth
}

// commonRoot is the lowest common parent directory of all roots. A
// lone file root reports relative to its containing directory.
func commonRoot(roots []string, forest []*scan.Entry) string {
	sep := string(filepath.Separator)
	segs := strings.Split(roots[0], sep)
	for _, r := range roots[1:] {
		other := strings.Split(r, sep)
		if len(other) < len(segs) {
			segs = segs[:len(other)]
		}
		for i := range segs {
			if segs[i] != other[i] {
				segs = segs[:i]
				break
			}
		}
	}
	root := strings.Join(segs, sep)
	if root == "" {
		root = sep
	}
	if len(forest) == 1 && !forest[0].IsDir() {
		root = filepath.Dir(root)
	}
	return root
}

func collectSkipped(e *scan.Entry, res *Result) {
	switch e.Kind {
	case scan.KindSymlink:
		res.Symlinks = append(res.Symlinks, e.Path)
	case scan.KindSpecial:
		res.Special = append(res.Special, e.Path)
	case scan.KindIgnored:
		res.Ignored = append(res.Ignored, e.Path)
	case scan.KindDir:
		for _, child := range e.Children {
			collectSkipped(child, res)
		}
	}
}
