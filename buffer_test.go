package sharc

import (
	"errors"
	"io"
	"testing"
)

func TestByteBuffer(t *testing.T) {
	b := NewByteBuffer(make([]byte, 8), 0, 6)
	if b.Capacity() != 8 || b.Remaining() != 6 {
		t.Fatalf("capacity %d remaining %d", b.Capacity(), b.Remaining())
	}
	if _, err := b.Write([]byte("abcd")); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteUint16(0x0201); err != nil {
		t.Fatal(err)
	}
	if string(b.Bytes()) != "abcd\x01\x02" {
		t.Fatalf("Bytes = %q", b.Bytes())
	}
	if _, err := b.Write([]byte("x")); !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("write past Size: %v", err)
	}
	if err := b.WriteUint16(1); !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("WriteUint16 past Size: %v", err)
	}

	b.Rewind()
	if b.Position != 0 || b.Size != 6 {
		t.Fatalf("after Rewind: %+v", b)
	}
	v, err := b.ReadUint16()
	if err != nil || v != 'a'|'b'<<8 || string(b.Unread()) != "cd\x01\x02" {
		t.Fatalf("read %#x, %v, unread %q", v, err, b.Unread())
	}

	b.Reset(3)
	b.ReadUint16()
	if _, err := b.ReadUint16(); err != io.ErrUnexpectedEOF {
		t.Fatalf("ReadUint16 with one byte left: %v", err)
	}
	b.Position = b.Size
	if _, err := b.ReadUint16(); err != io.EOF {
		t.Fatalf("ReadUint16 at Size: %v", err)
	}
}

func TestByteBufferWriteAllOrNothing(t *testing.T) {
	b := NewByteBuffer(make([]byte, 4), 2, 4)
	if _, err := b.Write([]byte("xyz")); err == nil {
		t.Fatal("expected overflow")
	}
	if b.Position != 2 {
		t.Fatalf("failed write moved cursor to %d", b.Position)
	}
}

func TestByteBufferPanics(t *testing.T) {
	for _, f := range []func(){
		func() { NewByteBuffer(make([]byte, 4), 0, 5) },
		func() { NewByteBuffer(make([]byte, 4), 3, 2) },
		func() { NewByteBuffer(make([]byte, 4), -1, 2) },
		func() { b := NewByteBuffer(make([]byte, 4), 0, 4); b.Reset(5) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Error("no panic")
				}
			}()
			f()
		}()
	}
}
