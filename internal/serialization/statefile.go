package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// WriteStateFile writes segments to path in .mst format.
//
// Segments are laid out in lexicographic name order so that writing
// the same state twice produces byte-identical payloads. The file is
// written to a temporary sibling and renamed into place, so a crash
// mid-write never leaves a torn state file under path.
func WriteStateFile(path string, segments map[string][]float32) error {
	names := make([]string, 0, len(segments))
	for name := range segments {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		FileID:        uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
	}

	var total int64
	for _, name := range names {
		n := int64(len(segments[name]))
		header.Segments = append(header.Segments, SegmentMeta{
			Name:   name,
			Offset: total,
			Length: n,
		})
		total += n
	}

	payload := make([]byte, total*4)
	for i, name := range names {
		off := header.Segments[i].Offset * 4
		for j, v := range segments[name] {
			binary.LittleEndian.PutUint32(payload[off+int64(j)*4:], math.Float32bits(v))
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "encoding state file header")
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	checksum := ComputeChecksum(payload)

	var buf bytes.Buffer
	buf.Grow(fixedHeaderSize + len(headerJSON) + len(payload))
	buf.WriteString(MagicBytes)
	var fixed [8]byte
	binary.LittleEndian.PutUint32(fixed[0:], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[4:], uint32(len(headerJSON)))
	buf.Write(fixed[:])
	buf.Write(checksum[:])
	buf.Write(headerJSON)
	buf.Write(payload)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing state file %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "renaming state file into place at %s", path)
	}
	return nil
}

// ReadStateFile reads a .mst file and returns its named segments.
//
// The magic bytes, version, checksum, and every segment's bounds are
// validated before any data is returned; a failure never yields a
// partial result.
func ReadStateFile(path string) (map[string][]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading state file %s", path)
	}
	if len(raw) < fixedHeaderSize {
		return nil, errors.Wrapf(ErrTruncated, "%s: %d bytes", path, len(raw))
	}
	if string(raw[:4]) != MagicBytes {
		return nil, errors.Wrapf(ErrInvalidMagic, "%s", path)
	}

	version := binary.LittleEndian.Uint32(raw[4:])
	if version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%s: version %d", path, version)
	}

	headerLen := int64(binary.LittleEndian.Uint32(raw[8:]))
	if headerLen > MaxHeaderSize {
		return nil, errors.Wrapf(ErrHeaderTooLarge, "%s: %d bytes", path, headerLen)
	}
	if int64(len(raw)) < fixedHeaderSize+headerLen {
		return nil, errors.Wrapf(ErrTruncated, "%s: header runs past end of file", path)
	}

	var stored [ChecksumSize]byte
	copy(stored[:], raw[12:12+ChecksumSize])

	var header Header
	if err := json.Unmarshal(raw[fixedHeaderSize:fixedHeaderSize+headerLen], &header); err != nil {
		return nil, errors.Wrapf(err, "parsing state file header %s", path)
	}

	payload := raw[fixedHeaderSize+headerLen:]
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	payloadLen := int64(len(payload)) / 4
	segments := make(map[string][]float32, len(header.Segments))
	for _, meta := range header.Segments {
		if meta.Offset < 0 || meta.Length < 0 || meta.Offset+meta.Length > payloadLen {
			return nil, errors.Wrapf(ErrSegmentBounds, "%s: segment %q [%d:%d] of %d",
				path, meta.Name, meta.Offset, meta.Offset+meta.Length, payloadLen)
		}
		if _, ok := segments[meta.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateSegment, "%s: segment %q", path, meta.Name)
		}
		values := make([]float32, meta.Length)
		for j := range values {
			bits := binary.LittleEndian.Uint32(payload[(meta.Offset+int64(j))*4:])
			values[j] = math.Float32frombits(bits)
		}
		segments[meta.Name] = values
	}
	return segments, nil
}
