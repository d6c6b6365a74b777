package fsutil

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DefaultChunkSize is the block size used by ReadInChunks when none is given.
const DefaultChunkSize = 64 * 1024

// ReadInChunks streams the file as UTF-8 text in blocks of at most size
// bytes. A multi-byte character split by a block boundary is carried into
// the next block, so the concatenated blocks always equal the file text.
// On failure the sequence yields a single ErrRead or ErrDecode and stops.
// The file is closed when the sequence ends or the caller stops early.
func ReadInChunks(path string, size int) iter.Seq2[string, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}

	return func(yield func(string, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield("", fmt.Errorf("%w: %w", ErrRead, err))
			return
		}
		defer f.Close()

		r := transform.NewReader(f, encoding.UTF8Validator)
		buf := make([]byte, size)
		var pending []byte

		for {
			n, err := r.Read(buf)
			if n > 0 {
				data := append(pending, buf[:n]...)
				text, rest := splitIncompleteRune(data)
				pending = append([]byte(nil), rest...)
				if len(text) > 0 && !yield(string(text), nil) {
					return
				}
			}

			switch {
			case err == nil:
				continue
			case errors.Is(err, io.EOF):
				if len(pending) > 0 {
					yield("", fmt.Errorf("%w: %s: truncated UTF-8 sequence", ErrDecode, path))
				}
				return
			case errors.Is(err, encoding.ErrInvalidUTF8):
				yield("", fmt.Errorf("%w: %s: %w", ErrDecode, path, err))
				return
			default:
				yield("", fmt.Errorf("%w: %s: %w", ErrRead, path, err))
				return
			}
		}
	}
}

// ReadText reads the whole file through ReadInChunks.
func ReadText(path string, size int) (string, error) {
	var b strings.Builder
	for block, err := range ReadInChunks(path, size) {
		if err != nil {
			return "", err
		}
		b.WriteString(block)
	}
	return b.String(), nil
}

// splitIncompleteRune separates a trailing partial UTF-8 sequence from b.
func splitIncompleteRune(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i], b[i:]
			}
			break
		}
	}
	return b, nil
}
