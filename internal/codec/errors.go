package codec

import "errors"

// Sentinel errors the persistence layer checks with errors.Is. Per the
// design note "Exception-for-control-flow in codec": decode failures, CRC
// mismatches, and version rejections are first-class errors, never panics
// (the only panic in this package is the LZ4 encoder's match-offset bound
// check in lz4.go, which the encoder's own match window never trips; the
// decoder reports every malformed stream as ErrCorrupted).
var (
	// ErrCorrupted covers magic mismatch, CRC mismatch, and truncated input.
	ErrCorrupted = errors.New("codec: corrupted record")
	// ErrUnsupportedVersion covers any version other than the one this codec
	// writes.
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
	// ErrSizeMismatch means the persisted chunk_size differs from the
	// currently configured edge size; callers treat this as "absent".
	ErrSizeMismatch = errors.New("codec: chunk size mismatch")
)
