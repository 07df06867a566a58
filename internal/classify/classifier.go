// Package classify partitions scanned files and directory trees into
// equivalence classes of identical content. Files are grouped by a
// staged size-then-digest comparison; directories are grouped bottom-up
// by composite signatures over their children's class identities.
package classify

import (
	"finddup-go/internal/fingerprint"
	"finddup-go/internal/scan"
)

// ClassID identifies one equivalence class within a single scan. Two
// entries share a ClassID iff they are content-identical. IDs are
// sequential and carry no meaning across scans.
type ClassID int

// fileKey is the confirmed identity of a file: size plus content digest.
type fileKey struct {
	size   int64
	digest fingerprint.Digest
}

// Classifier is the accumulator of classification state for one scan.
// It is passed explicitly rather than kept global so that the groupers
// can be exercised on synthetic entry forests without any filesystem.
type Classifier struct {
	nextID ClassID

	// byDigest maps a confirmed file key to its class. The key keeps
	// the size next to the digest so the size pre-filter stays
	// authoritative even under a digest collision. Using a single
	// shared confirmation key makes class membership transitive by
	// construction; no pairwise comparison happens anywhere.
	byDigest map[fileKey]ClassID

	// bySig maps a directory composite signature to its class.
	bySig map[uint64]ClassID

	class   map[*scan.Entry]ClassID
	members map[ClassID][]*scan.Entry

	// dirSize holds the byte size of classified directories (sum of
	// regular descendant file sizes), for report ordering.
	dirSize map[*scan.Entry]int64

	// indeterminate marks entries whose duplicate-or-unique status
	// could not be confirmed because of a read error. They never fold
	// into either bucket, and neither does any ancestor directory.
	indeterminate map[*scan.Entry]bool

	// Errors collects digest failures, in no particular order.
	Errors []*scan.PathError
}

// NewClassifier returns an empty accumulator.
func NewClassifier() *Classifier {
	return &Classifier{
		byDigest:      make(map[fileKey]ClassID),
		bySig:         make(map[uint64]ClassID),
		class:         make(map[*scan.Entry]ClassID),
		members:       make(map[ClassID][]*scan.Entry),
		dirSize:       make(map[*scan.Entry]int64),
		indeterminate: make(map[*scan.Entry]bool),
	}
}

func (c *Classifier) newClass() ClassID {
	id := c.nextID
	c.nextID++
	return id
}

func (c *Classifier) assign(e *scan.Entry, id ClassID) {
	c.class[e] = id
	c.members[id] = append(c.members[id], e)
}

func (c *Classifier) markIndeterminate(e *scan.Entry) {
	c.indeterminate[e] = true
}

// Class returns the entry's class id, if it has been classified.
func (c *Classifier) Class(e *scan.Entry) (ClassID, bool) {
	id, ok := c.class[e]
	return id, ok
}

// Members returns the entries of a class.
func (c *Classifier) Members(id ClassID) []*scan.Entry {
	return c.members[id]
}

// Indeterminate reports whether the entry ended up with no confirmed
// classification.
func (c *Classifier) Indeterminate(e *scan.Entry) bool {
	return c.indeterminate[e]
}
