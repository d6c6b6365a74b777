// Package fsutil provides the file primitives used around chunking:
// content hashing, bounded-memory text reading, documentation file
// detection and JSON persistence.
package fsutil

import "errors"

var (
	// ErrRead is returned when a file cannot be opened or streamed.
	ErrRead = errors.New("read error")
	// ErrDecode is returned when file bytes are not valid UTF-8 text.
	ErrDecode = errors.New("decode error")
)
