package classify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"finddup-go/internal/fingerprint"
	"finddup-go/internal/scan"
)

// Progress receives digest-phase notifications, letting the caller
// drive a progress display without the engine emitting any text.
type Progress interface {
	Start(total int)
	Step()
	Done()
}

// GroupFiles partitions every comparable file of the forest into
// equivalence classes of identical content. Grouping is global across
// all roots, not confined to sibling directories.
//
// Staging keeps I/O minimal: files are first bucketed by size with no
// reads at all, size-singletons become unique classes immediately, and
// only size-colliding files get digested. Zero-byte files share the
// defined empty digest without being opened. Digests for one scan are
// computed at most once per path, on a worker pool bounded by workers;
// no class is assigned until every digest of its size bucket is in.
//
// Files whose digest fails are marked indeterminate and their errors
// collected. When failFast is set the first failure aborts instead.
func (c *Classifier) GroupFiles(ctx context.Context, forest []*scan.Entry, workers int, failFast bool, prog Progress) error {
	bySize := make(map[int64][]*scan.Entry)
	for _, root := range forest {
		collectFiles(root, func(f *scan.Entry) {
			if f.Err != nil {
				c.markIndeterminate(f)
				return
			}
			bySize[f.Size] = append(bySize[f.Size], f)
		})
	}

	if workers <= 0 {
		workers = 1
	}

	if prog != nil {
		total := 0
		for size, bucket := range bySize {
			if size > 0 && len(bucket) > 1 {
				total += len(bucket)
			}
		}
		prog.Start(total)
		defer prog.Done()
	}

	for size, bucket := range bySize {
		if size == 0 {
			// All empty files are digest-equal by definition; no read.
			for _, f := range bucket {
				c.assignDigest(f, fingerprint.EmptyDigest())
			}
			continue
		}
		if len(bucket) == 1 {
			// Nothing else can match it; the size pre-filter is
			// authoritative, so no digest is ever computed.
			c.assign(bucket[0], c.newClass())
			continue
		}

		digests := make([]fingerprint.Digest, len(bucket))
		errs := make([]error, len(bucket))

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		for i, f := range bucket {
			i, f := i, f
			eg.Go(func() error {
				digests[i], errs[i] = fingerprint.DigestFile(egCtx, f.Path)
				if prog != nil {
					prog.Step()
				}
				if failFast {
					return errs[i]
				}
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		for i, f := range bucket {
			if errs[i] != nil {
				c.markIndeterminate(f)
				if perr, ok := errs[i].(*scan.PathError); ok {
					c.Errors = append(c.Errors, perr)
				} else {
					c.Errors = append(c.Errors, scan.NewPathError(f.Path, errs[i]))
				}
				continue
			}
			c.assignDigest(f, digests[i])
		}
	}

	return ctx.Err()
}

// assignDigest assigns the file its digest-derived class, creating the
// class on first sight of the key.
func (c *Classifier) assignDigest(f *scan.Entry, d fingerprint.Digest) {
	key := fileKey{size: f.Size, digest: d}
	id, ok := c.byDigest[key]
	if !ok {
		id = c.newClass()
		c.byDigest[key] = id
	}
	c.assign(f, id)
}

func collectFiles(e *scan.Entry, visit func(*scan.Entry)) {
	switch e.Kind {
	case scan.KindFile:
		visit(e)
	case scan.KindDir:
		for _, child := range e.Children {
			collectFiles(child, visit)
		}
	}
}
