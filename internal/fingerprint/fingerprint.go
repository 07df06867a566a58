// Package fingerprint computes the content identity of files: a cheap
// size pre-filter from metadata and, on demand, a streaming SHA-256
// digest of the file bytes. The digest is the confirmation key for
// duplicate detection, so it has to be a stable cryptographic hash.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"io"
	"os"

	"finddup-go/internal/scan"
)

const bufferSize = 32 * 1024 // 32KB buffer for streaming

// DigestSize is the length of a content digest in bytes.
const DigestSize = sha256.Size

// Digest is a SHA-256 content digest. Two files with equal digests (and
// equal sizes, which the grouper checks first) are considered
// byte-for-byte identical.
type Digest [DigestSize]byte

// Signature is the staged identity of a file: size always, digest only
// once confirmation is needed.
type Signature struct {
	Size   int64
	Digest Digest

	// Digested marks whether Digest holds a computed value. Candidate
	// equality uses Size alone; confirmed equality needs the digest.
	Digested bool
}

// EmptyDigest returns the digest of empty content. Zero-byte files all
// share it without any read.
func EmptyDigest() Digest {
	return sha256.Sum256(nil)
}

// Stat returns a signature with the size from filesystem metadata and
// no digest. Symlinks are not followed.
func Stat(path string) (Signature, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Signature{}, scan.NewPathError(path, err)
	}
	return Signature{Size: info.Size()}, nil
}

// DigestFile streams the file's full content through SHA-256 in
// bounded-size chunks, so memory use is independent of file size. The
// context is checked between chunks, letting an in-flight digest be
// abandoned on cancellation. Failures come back as a *scan.PathError
// naming the offending path.
func DigestFile(ctx context.Context, path string) (Digest, error) {
	var digest Digest

	file, err := os.Open(path)
	if err != nil {
		return digest, scan.NewPathError(path, err)
	}
	defer file.Close()

	h := sha256.New()
	buf := make([]byte, bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return digest, err
		}
		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return digest, scan.NewPathError(path, err)
		}
	}

	copy(digest[:], h.Sum(nil))
	return digest, nil
}
