package classify

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"finddup-go/internal/scan"
)

// GroupDirs partitions every directory of the forest into equivalence
// classes of structurally-and-content-identical subtrees. Files must
// already be classified (GroupFiles).
//
// Two directories are identical iff they have the same number of
// comparable children and a bijection pairing each child with a
// content-identical one. Names never participate. The bijection test
// reduces to sequence equality of composite signatures: the sorted
// multiset of children's class ids, folded through xxhash. Class
// identity is already transitive and canonical from lower levels, so
// equal signatures mean identical subtrees.
//
// Classification is post-order: a directory is never classified before
// all of its children, and each directory is classified exactly once.
func (c *Classifier) GroupDirs(forest []*scan.Entry) {
	for _, root := range forest {
		if root.IsDir() {
			c.classifyDir(root)
		}
	}
}

// classifyDir returns the directory's class and byte size. ok is false
// when the subtree is indeterminate: a read error anywhere below means
// the directory can be confirmed neither duplicate nor unique, and the
// taint propagates to every ancestor. An errored child is never
// conflated with an absent one.
func (c *Classifier) classifyDir(dir *scan.Entry) (id ClassID, size int64, ok bool) {
	if id, seen := c.class[dir]; seen {
		return id, c.dirSize[dir], true
	}
	if c.indeterminate[dir] {
		return 0, c.dirSize[dir], false
	}

	ok = dir.Err == nil
	ids := make([]ClassID, 0, len(dir.Children))

	for _, child := range dir.Children {
		switch child.Kind {
		case scan.KindDir:
			childID, childSize, childOK := c.classifyDir(child)
			size += childSize
			if !childOK {
				ok = false
				continue
			}
			ids = append(ids, childID)
		case scan.KindFile:
			size += child.Size
			childID, classified := c.class[child]
			if !classified {
				// Indeterminate file (read error).
				ok = false
				continue
			}
			ids = append(ids, childID)
		default:
			// Symlinks, irregular files and ignored names do not
			// participate in directory identity.
		}
	}

	c.dirSize[dir] = size
	if !ok {
		c.markIndeterminate(dir)
		return 0, size, false
	}

	sig := compositeSignature(ids)
	id, seen := c.bySig[sig]
	if !seen {
		id = c.newClass()
		c.bySig[sig] = id
	}
	c.assign(dir, id)
	return id, size, true
}

// compositeSignature folds the sorted child class ids into a single
// comparison key. An empty directory yields the hash of no ids, shared
// by all empty directories.
func compositeSignature(ids []ClassID) uint64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	h := xxhash.New()
	var buf [8]byte
	for _, id := range ids {
		binary.BigEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
	}
	return h.Sum64()
}
