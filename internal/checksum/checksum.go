// Package checksum computes MD5 and CRC-32 digests of a file in a single
// streaming pass, for post-transfer integrity verification.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"hash/crc32"
	"io"
	"os"
)

// Sums holds the digests produced by a single pass over a stream.
type Sums struct {
	MD5   string
	CRC32 uint32
}

// Stream computes MD5 and CRC-32 of everything read from r, fanning each
// chunk out to both hashers so the file is only read once.
func Stream(r io.Reader) (Sums, error) {
	md5h := md5.New()
	crc32h := crc32.NewIEEE()

	mw := io.MultiWriter(md5h, crc32h)
	if _, err := io.Copy(mw, r); err != nil {
		return Sums{}, err
	}

	return Sums{
		MD5:   hex.EncodeToString(md5h.Sum(nil)),
		CRC32: crc32h.Sum32(),
	}, nil
}

// File computes MD5 and CRC-32 of the file at path in one pass.
func File(path string) (Sums, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sums{}, err
	}
	defer f.Close()
	return Stream(f)
}

// Verify computes the digests of the file at path and compares them
// against expected. A zero-value field in expected is skipped (not
// compared), so callers can verify MD5 only, CRC-32 only, or both.
func Verify(path string, expected Sums) (Sums, bool, error) {
	actual, err := File(path)
	if err != nil {
		return Sums{}, false, err
	}

	ok := true
	if expected.MD5 != "" && expected.MD5 != actual.MD5 {
		ok = false
	}
	if expected.CRC32 != 0 && expected.CRC32 != actual.CRC32 {
		ok = false
	}
	return actual, ok, nil
}
