package sharc

import (
	"encoding/binary"
	"fmt"
	"time"
)

// A Mode identifies how a block's payload is encoded.
type Mode byte

const (
	// ModeCopy stores the block verbatim.
	ModeCopy Mode = 0
	// ModeSinglePass is one dictionary-coding pass.
	ModeSinglePass Mode = 1
	// ModeDualPass is a dictionary-coding pass applied to the output of a
	// first pass.
	ModeDualPass Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeSinglePass:
		return "single-pass"
	case ModeDualPass:
		return "dual-pass"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m <= ModeDualPass
}

// Format versions. Decoders accept any revision of the same major version.
const (
	MajorVersion = 0
	MinorVersion = 4
	Revision     = 0
)

const (
	// BlockHeaderSize is the encoded size of a BlockHeader.
	BlockHeaderSize = 8
	// FileHeaderSize is the encoded size of a FileHeader.
	FileHeaderSize = 28

	fileMagic = 0x43524853 // "SHRC"
)

// A BlockHeader precedes every block payload.
type BlockHeader struct {
	Mode     Mode
	Reserved [3]byte

	// NextBlock is the exact size of the payload that follows the header.
	NextBlock uint32
}

// NewBlockHeader returns a header with zeroed reserved bytes.
func NewBlockHeader(mode Mode, nextBlock uint32) BlockHeader {
	return BlockHeader{Mode: mode, NextBlock: nextBlock}
}

// AppendTo appends the encoded header to dst.
func (h BlockHeader) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(h.Mode), 0, 0, 0)
	return binary.LittleEndian.AppendUint32(dst, h.NextBlock)
}

// put writes the encoded header into the first BlockHeaderSize bytes of b.
func (h BlockHeader) put(b []byte) {
	b[0] = byte(h.Mode)
	b[1], b[2], b[3] = 0, 0, 0
	binary.LittleEndian.PutUint32(b[4:8], h.NextBlock)
}

// ParseBlockHeader decodes a block header. Reserved bytes are kept but
// not interpreted.
func ParseBlockHeader(b []byte) (BlockHeader, error) {
	if len(b) < BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("%w: block header needs %d bytes, have %d", ErrTruncated, BlockHeaderSize, len(b))
	}
	h := BlockHeader{
		Mode:      Mode(b[0]),
		Reserved:  [3]byte{b[1], b[2], b[3]},
		NextBlock: binary.LittleEndian.Uint32(b[4:8]),
	}
	if !h.Mode.Valid() {
		return BlockHeader{}, fmt.Errorf("%w: 0x%02x", ErrUnknownMode, b[0])
	}
	return h, nil
}

// checkPayload verifies that the payload announced by h can belong to a
// file whose blocks hold at most bufferSize bytes.
func (h BlockHeader) checkPayload(bufferSize uint32) error {
	if h.NextBlock > bufferSize {
		return fmt.Errorf("%w: %s payload of %d bytes, buffer size %d", ErrPayloadSize, h.Mode, h.NextBlock, bufferSize)
	}
	if h.Mode != ModeCopy && h.NextBlock%2 != 0 {
		return fmt.Errorf("%w: %s payload of odd size %d", ErrTruncatedCode, h.Mode, h.NextBlock)
	}
	return nil
}

// SourceMetadata describes the original input. It is informational and
// not needed to decode.
type SourceMetadata struct {
	Size    uint64
	ModTime time.Time
}

// A FileHeader starts every compressed stream.
type FileHeader struct {
	Major, Minor, Revision uint8

	// BufferSize is the block size used for every block in the stream.
	BufferSize uint32

	Metadata SourceMetadata
}

// NewFileHeader returns a header for the current format version.
func NewFileHeader(bufferSize int, meta SourceMetadata) (FileHeader, error) {
	if bufferSize < MinBlockSize || bufferSize > MaxBlockSize {
		return FileHeader{}, fmt.Errorf("%w: block size %d out of range [%d,%d]", ErrInvalidOptions, bufferSize, MinBlockSize, MaxBlockSize)
	}
	return FileHeader{
		Major:      MajorVersion,
		Minor:      MinorVersion,
		Revision:   Revision,
		BufferSize: uint32(bufferSize),
		Metadata:   meta,
	}, nil
}

// AppendTo appends the encoded header to dst.
func (h FileHeader) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, fileMagic)
	dst = append(dst, h.Major, h.Minor, h.Revision, 0)
	dst = binary.LittleEndian.AppendUint32(dst, h.BufferSize)
	dst = binary.LittleEndian.AppendUint64(dst, h.Metadata.Size)
	var mtime int64
	if !h.Metadata.ModTime.IsZero() {
		mtime = h.Metadata.ModTime.UnixNano()
	}
	return binary.LittleEndian.AppendUint64(dst, uint64(mtime))
}

// ParseFileHeader decodes and validates a file header.
func ParseFileHeader(b []byte) (FileHeader, error) {
	if len(b) < FileHeaderSize {
		return FileHeader{}, fmt.Errorf("%w: file header needs %d bytes, have %d", ErrTruncated, FileHeaderSize, len(b))
	}
	if magic := binary.LittleEndian.Uint32(b[0:4]); magic != fileMagic {
		return FileHeader{}, fmt.Errorf("%w: magic %08x", ErrInvalidMagic, magic)
	}
	h := FileHeader{
		Major:      b[4],
		Minor:      b[5],
		Revision:   b[6],
		BufferSize: binary.LittleEndian.Uint32(b[8:12]),
	}
	if h.Major != MajorVersion {
		return FileHeader{}, fmt.Errorf("%w: %d.%d.%d", ErrUnsupportedVersion, h.Major, h.Minor, h.Revision)
	}
	if h.BufferSize < MinBlockSize || h.BufferSize > MaxBlockSize {
		return FileHeader{}, fmt.Errorf("%w: %d", ErrInvalidBufferSize, h.BufferSize)
	}
	h.Metadata.Size = binary.LittleEndian.Uint64(b[12:20])
	if mtime := int64(binary.LittleEndian.Uint64(b[20:28])); mtime != 0 {
		h.Metadata.ModTime = time.Unix(0, mtime)
	}
	return h, nil
}
