// Package serialization implements the .mst optimizer-state file
// format: durable storage for named flat float32 sequences keyed by a
// logical checkpoint name.
//
// File layout (little-endian):
//
//	[0x00] magic "MST1" (4 bytes)
//	[0x04] format version (uint32)
//	[0x08] JSON header length (uint32)
//	[0x0C] SHA-256 checksum of the payload (32 bytes)
//	[0x2C] JSON header (Header)
//	[....] payload: raw float32 data, segment after segment
package serialization

import "time"

// Format constants.
const (
	MagicBytes    = "MST1"
	FormatVersion = 1

	// MaxHeaderSize bounds the JSON header to keep corrupt length
	// fields from triggering huge allocations.
	MaxHeaderSize = 1 << 20

	ChecksumSize    = 32
	fixedHeaderSize = 4 + 4 + 4 + ChecksumSize
)

// Header is the JSON meta header of a .mst state file.
type Header struct {
	FormatVersion int           `json:"format_version"`
	FileID        string        `json:"file_id"`    // unique id of this write
	CreatedAt     time.Time     `json:"created_at"` // when the file was written
	Segments      []SegmentMeta `json:"segments"`
}

// SegmentMeta describes one named float32 sequence in the payload.
// Offset and Length are in float32 elements, not bytes.
type SegmentMeta struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Length int64  `json:"length"`
}
