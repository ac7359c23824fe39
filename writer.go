package sharc

import (
	"bytes"
	"io"
)

// A Writer compresses data written to it and writes the compressed stream
// to Dest: a file header, then one block record per BlockSize bytes of
// input.
//
// The configuration fields must not change after the first Write.
type Writer struct {
	Dest  io.Writer
	Level Level

	// BlockSize is the number of input bytes per block.
	// The default is DefaultBlockSize.
	BlockSize int

	Hash HashFunction

	// Metadata is recorded in the file header.
	Metadata SourceMetadata

	coder   BlockCoder
	block   []byte
	record  []byte
	started bool
	err     error
}

// NewWriter returns a Writer configured from opts. A nil opts means
// DefaultOptions.
func NewWriter(w io.Writer, opts *Options) (*Writer, error) {
	o := opts.withDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Writer{
		Dest:      w,
		Level:     o.Level,
		BlockSize: o.BlockSize,
		Hash:      o.Hash,
	}, nil
}

func (w *Writer) start() error {
	o := Options{Level: w.Level, BlockSize: w.BlockSize, Hash: w.Hash}
	o = o.withDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	header, err := NewFileHeader(o.BlockSize, w.Metadata)
	if err != nil {
		return err
	}

	w.BlockSize = o.BlockSize
	if w.coder.dict == nil {
		w.coder.Hash = o.Hash
	}
	if cap(w.block) < o.BlockSize {
		w.block = make([]byte, 0, o.BlockSize)
		w.record = make([]byte, BlockHeaderSize+o.BlockSize)
	}
	w.block = w.block[:0]
	w.started = true

	_, err = w.Dest.Write(header.AppendTo(w.record[:0]))
	return err
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if !w.started {
		if w.err = w.start(); w.err != nil {
			return 0, w.err
		}
	}

	for len(p) > 0 {
		k := copy(w.block[len(w.block):w.BlockSize], p)
		w.block = w.block[:len(w.block)+k]
		p = p[k:]
		n += k

		if len(w.block) == w.BlockSize {
			if w.err = w.writeBlock(); w.err != nil {
				return n, w.err
			}
		}
	}
	return n, nil
}

// writeBlock codes the staged block and writes its record.
func (w *Writer) writeBlock() error {
	in := NewByteBuffer(w.block, 0, len(w.block))
	out := NewByteBuffer(w.record, BlockHeaderSize, len(w.record))
	header, payload := w.coder.CompressBlock(&in, &out, w.Level.mode())
	if header.Mode == ModeCopy {
		copy(w.record[BlockHeaderSize:], payload)
	}
	header.put(w.record)
	w.block = w.block[:0]

	_, err := w.Dest.Write(w.record[:BlockHeaderSize+len(payload)])
	return err
}

// Close writes the final partial block. It does not close Dest.
func (w *Writer) Close() error {
	if w.err == ErrClosed {
		return nil
	}
	if w.err != nil {
		return w.err
	}
	if !w.started {
		if w.err = w.start(); w.err != nil {
			return w.err
		}
	}
	if len(w.block) > 0 {
		if w.err = w.writeBlock(); w.err != nil {
			return w.err
		}
	}
	w.err = ErrClosed
	return nil
}

// Reset discards the Writer's state and makes it write a new stream to
// dst, keeping its configuration and buffers.
func (w *Writer) Reset(dst io.Writer) {
	w.Dest = dst
	w.block = w.block[:0]
	w.started = false
	w.err = nil
}

// Compress returns the compressed form of src. A nil opts means
// DefaultOptions.
func Compress(src []byte, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
