package fsutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashBlockSize = 64 * 1024

// HashFile returns the MD5 digest of the file's bytes as 32 lowercase hex
// characters. The digest is a change fingerprint, not a security control.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashBlockSize)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
