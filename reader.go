package sharc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// A Reader decompresses a stream produced by Writer or Stream.
type Reader struct {
	src   io.Reader
	coder BlockCoder

	header    FileHeader
	started   bool
	headerBuf [FileHeaderSize]byte
	payload   []byte
	decoded   []byte
	pending   []byte
	err       error
}

// NewReader returns a Reader that decompresses r. The file header is read
// on first use.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r}
}

// Header returns the stream's file header, reading it if necessary.
func (r *Reader) Header() (FileHeader, error) {
	if !r.started {
		if err := r.start(); err != nil {
			return FileHeader{}, err
		}
	}
	return r.header, nil
}

func (r *Reader) start() error {
	if r.err != nil {
		return r.err
	}
	if _, err := io.ReadFull(r.src, r.headerBuf[:]); err != nil {
		r.err = readError(err, "file header")
		return r.err
	}
	h, err := ParseFileHeader(r.headerBuf[:])
	if err != nil {
		r.err = err
		return err
	}
	r.header = h
	size := int(h.BufferSize)
	if cap(r.payload) < size {
		r.payload = make([]byte, size)
		r.decoded = make([]byte, size)
	}
	r.payload = r.payload[:size]
	r.decoded = r.decoded[:size]
	r.started = true
	return nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if !r.started {
		if err := r.start(); err != nil {
			return 0, err
		}
	}
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.nextBlock()
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// nextBlock reads and decodes one block record. A clean end of input at
// a record boundary is io.EOF.
func (r *Reader) nextBlock() error {
	var buf [BlockHeaderSize]byte
	if _, err := io.ReadFull(r.src, buf[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return readError(err, "block header")
	}
	h, err := ParseBlockHeader(buf[:])
	if err != nil {
		return err
	}
	if err := h.checkPayload(r.header.BufferSize); err != nil {
		return err
	}

	payload := r.payload[:h.NextBlock]
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return readError(err, "block payload")
	}

	in := NewByteBuffer(payload, 0, len(payload))
	out := NewByteBuffer(r.decoded, 0, len(r.decoded))
	if err := r.coder.DecodeBlock(&in, &out, h.Mode); err != nil {
		return err
	}
	r.pending = out.Bytes()
	return nil
}

// Reset discards the Reader's state and makes it read from src.
func (r *Reader) Reset(src io.Reader) {
	r.src = src
	r.started = false
	r.pending = nil
	r.err = nil
}

func readError(err error, what string) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return err
}

// Decompress returns the decompressed form of src.
func Decompress(src []byte) ([]byte, error) {
	return io.ReadAll(NewReader(bytes.NewReader(src)))
}
