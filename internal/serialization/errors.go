package serialization

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported state file version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrTruncated          = errors.New("state file truncated")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrSegmentBounds      = errors.New("segment extends beyond data section")
	ErrDuplicateSegment   = errors.New("duplicate segment name")
)
