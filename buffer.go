package sharc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// A ByteBuffer is a cursor over a fixed backing slice. For input views,
// Size is the number of valid bytes and Position is the read cursor; for
// output views, Size is the write bound and Position is the write cursor.
//
// The invariant 0 <= Position <= Size <= len(Pointer) always holds.
type ByteBuffer struct {
	Pointer  []byte
	Position int
	Size     int
}

// NewByteBuffer returns a view over p. It panics if the cursor values
// break the buffer invariant.
func NewByteBuffer(p []byte, position, size int) ByteBuffer {
	if position < 0 || position > size || size > len(p) {
		panic(fmt.Sprintf("sharc: invalid byte buffer position=%d size=%d capacity=%d", position, size, len(p)))
	}
	return ByteBuffer{Pointer: p, Position: position, Size: size}
}

// Rewind moves the cursor back to the start without reallocating.
func (b *ByteBuffer) Rewind() {
	b.Position = 0
}

// Reset rewinds the buffer and sets its size. It panics if size exceeds
// the capacity.
func (b *ByteBuffer) Reset(size int) {
	if size < 0 || size > len(b.Pointer) {
		panic(fmt.Sprintf("sharc: byte buffer size %d out of range [0,%d]", size, len(b.Pointer)))
	}
	b.Position = 0
	b.Size = size
}

func (b *ByteBuffer) Capacity() int {
	return len(b.Pointer)
}

// Remaining returns the number of bytes between the cursor and Size.
func (b *ByteBuffer) Remaining() int {
	return b.Size - b.Position
}

// Bytes returns the bytes before the cursor: what has been written to an
// output view.
func (b *ByteBuffer) Bytes() []byte {
	return b.Pointer[:b.Position]
}

// Unread returns the bytes between the cursor and Size: what is left to
// read from an input view.
func (b *ByteBuffer) Unread() []byte {
	return b.Pointer[b.Position:b.Size]
}

// Write appends p at the cursor. Nothing is written if p does not fit.
func (b *ByteBuffer) Write(p []byte) (int, error) {
	if len(p) > b.Remaining() {
		return 0, fmt.Errorf("%w: writing %d bytes with %d remaining", ErrBufferOverflow, len(p), b.Remaining())
	}
	n := copy(b.Pointer[b.Position:b.Size], p)
	b.Position += n
	return n, nil
}

// WriteUint16 appends v in little-endian order.
func (b *ByteBuffer) WriteUint16(v uint16) error {
	if b.Remaining() < 2 {
		return fmt.Errorf("%w: writing 2 bytes with %d remaining", ErrBufferOverflow, b.Remaining())
	}
	binary.LittleEndian.PutUint16(b.Pointer[b.Position:], v)
	b.Position += 2
	return nil
}

// ReadUint16 reads a little-endian value at the cursor. It returns io.EOF
// at Size and io.ErrUnexpectedEOF when a single byte is left.
func (b *ByteBuffer) ReadUint16() (uint16, error) {
	switch b.Remaining() {
	case 0:
		return 0, io.EOF
	case 1:
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(b.Pointer[b.Position:])
	b.Position += 2
	return v, nil
}
