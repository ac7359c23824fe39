package sharc

import (
	"fmt"
)

// A State is the result of a Stream operation.
type State int

const (
	// StateReady means progress was made and the stream can take more
	// input at a block boundary.
	StateReady State = iota
	// StateFinished means all input was consumed and all output drained.
	StateFinished
	// StateStallOnInputBuffer means the input view is exhausted in the
	// middle of a block. Refill In and call again.
	StateStallOnInputBuffer
	// StateStallOnOutputBuffer means the output view is full. Drain Out
	// and call again with the same remaining input.
	StateStallOnOutputBuffer
	StateErrorInputBufferSizeNotMultipleOf32
	StateErrorOutputBufferTooSmall
	StateErrorInvalidInternalState
	// StateErrorCorruptInput means the compressed input is malformed.
	// Err returns the cause.
	StateErrorCorruptInput
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFinished:
		return "finished"
	case StateStallOnInputBuffer:
		return "stall on input buffer"
	case StateStallOnOutputBuffer:
		return "stall on output buffer"
	case StateErrorInputBufferSizeNotMultipleOf32:
		return "error: input buffer size not a multiple of 32"
	case StateErrorOutputBufferTooSmall:
		return "error: output buffer too small"
	case StateErrorInvalidInternalState:
		return "error: invalid internal state"
	case StateErrorCorruptInput:
		return "error: corrupt input"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// IsError reports whether s is one of the error states.
func (s State) IsError() bool {
	return s >= StateErrorInputBufferSizeNotMultipleOf32
}

const (
	// StreamInputAlignment is the unit the input buffer size must be a
	// multiple of.
	StreamInputAlignment = 32
	// MinimumOutputBufferSize is the smallest output buffer Prepare accepts.
	MinimumOutputBufferSize = 1 << 9
)

type phase int

const (
	phaseUnprepared phase = iota
	phasePrepared
	phaseCompress
	phaseDecompress
	phaseFinished
	phaseFailed
)

// encodeState is the compressing side of a session.
type encodeState struct {
	attempt   Mode
	blockSize int

	// block holds raw input until a full block is staged.
	block  []byte
	staged int

	// record holds an encoded file header or block record; the bytes
	// record[drained:recordLen] are still to be written to Out.
	record    []byte
	recordLen int
	drained   int
}

func (e *encodeState) pending() int {
	return e.recordLen - e.drained
}

type decodeStep int

const (
	stepFileHeader decodeStep = iota
	stepBlockHeader
	stepPayload
)

// decodeState is the decompressing side of a session.
type decodeState struct {
	step   decodeStep
	header FileHeader
	block  BlockHeader

	// staged counts the bytes of the current header or payload collected
	// so far.
	scratch [FileHeaderSize]byte
	payload []byte
	staged  int

	// decoded[drained:decodedLen] is still to be written to Out.
	decoded    []byte
	decodedLen int
	drained    int
}

func (d *decodeState) pending() int {
	return d.decodedLen - d.drained
}

// A Stream compresses or decompresses incrementally through caller-owned
// buffers. It never blocks and performs no I/O: every call moves as many
// bytes as it can between In and Out, then reports what it needs next.
//
// The caller refills the input by writing new bytes to In.Pointer[0:n]
// and calling In.Reset(n), and drains the output by consuming Out.Bytes()
// and calling Out.Rewind().
//
// The compressed stream is byte-for-byte what a Writer with the same
// options and metadata produces.
type Stream struct {
	In          ByteBuffer
	InTotalRead uint64

	Out             ByteBuffer
	OutTotalWritten uint64

	phase phase
	state State
	err   error

	coder BlockCoder
	enc   encodeState
	dec   decodeState
}

// Err returns the error behind the last error state, if any.
func (s *Stream) Err() error {
	return s.err
}

// Prepare binds the input and output buffers. All of in is considered
// available input. len(in) must be a non-zero multiple of
// StreamInputAlignment and len(out) at least MinimumOutputBufferSize.
func (s *Stream) Prepare(in, out []byte) State {
	s.In = ByteBuffer{Pointer: in, Size: len(in)}
	s.Out = ByteBuffer{Pointer: out, Size: len(out)}
	s.InTotalRead = 0
	s.OutTotalWritten = 0
	s.err = nil

	switch {
	case len(in) == 0 || len(in)%StreamInputAlignment != 0:
		return s.fail(StateErrorInputBufferSizeNotMultipleOf32,
			fmt.Errorf("input buffer of %d bytes is not a non-zero multiple of %d", len(in), StreamInputAlignment))
	case len(out) < MinimumOutputBufferSize:
		return s.fail(StateErrorOutputBufferTooSmall,
			fmt.Errorf("output buffer of %d bytes is smaller than %d", len(out), MinimumOutputBufferSize))
	}

	s.phase = phasePrepared
	s.state = StateReady
	return s.state
}

func (s *Stream) fail(state State, err error) State {
	s.phase = phaseFailed
	s.state = state
	s.err = err
	return state
}

// canInit reports whether a new session may start. A failed stream must
// be prepared again.
func (s *Stream) canInit() (State, bool) {
	switch s.phase {
	case phasePrepared, phaseCompress, phaseDecompress, phaseFinished:
		return StateReady, true
	case phaseFailed:
		return s.state, false
	}
	return StateErrorInvalidInternalState, false
}

// rejectInit ends any session in progress after a failed init. The
// buffers stay prepared, so a later init with valid options succeeds.
func (s *Stream) rejectInit(err error) State {
	s.phase = phasePrepared
	s.state = StateErrorInvalidInternalState
	s.err = err
	return s.state
}

// enter checks that a call belongs to the session in progress.
func (s *Stream) enter(want phase) (State, bool) {
	switch s.phase {
	case want:
		return StateReady, true
	case phaseFailed:
		return s.state, false
	}
	return StateErrorInvalidInternalState, false
}

// CompressInit starts a compression session. A nil opts means
// DefaultOptions.
func (s *Stream) CompressInit(opts *Options) State {
	return s.CompressInitWithMetadata(opts, SourceMetadata{})
}

// CompressInitWithMetadata starts a compression session whose file header
// records meta.
func (s *Stream) CompressInitWithMetadata(opts *Options, meta SourceMetadata) State {
	if st, ok := s.canInit(); !ok {
		return st
	}
	o := opts.withDefaults()
	if err := o.Validate(); err != nil {
		return s.rejectInit(err)
	}
	header, err := NewFileHeader(o.BlockSize, meta)
	if err != nil {
		return s.rejectInit(err)
	}

	s.coder = BlockCoder{Hash: o.Hash, scratch: s.coder.scratch}
	e := &s.enc
	e.attempt = o.Level.mode()
	e.blockSize = o.BlockSize
	if cap(e.block) < o.BlockSize {
		e.block = make([]byte, o.BlockSize)
	}
	e.block = e.block[:o.BlockSize]
	recordSize := BlockHeaderSize + o.BlockSize
	if recordSize < FileHeaderSize {
		recordSize = FileHeaderSize
	}
	if cap(e.record) < recordSize {
		e.record = make([]byte, recordSize)
	}
	e.record = e.record[:recordSize]
	e.staged = 0
	e.recordLen = len(header.AppendTo(e.record[:0]))
	e.drained = 0

	s.InTotalRead = 0
	s.OutTotalWritten = 0
	s.err = nil
	s.phase = phaseCompress
	s.state = StateReady
	return s.state
}

// DecompressInit starts a decompression session.
func (s *Stream) DecompressInit() State {
	if st, ok := s.canInit(); !ok {
		return st
	}
	s.dec.step = stepFileHeader
	s.dec.staged = 0
	s.dec.decodedLen = 0
	s.dec.drained = 0

	s.InTotalRead = 0
	s.OutTotalWritten = 0
	s.err = nil
	s.phase = phaseDecompress
	s.state = StateReady
	return s.state
}

// take moves input bytes into dst and returns how many were moved.
func (s *Stream) take(dst []byte) int {
	n := copy(dst, s.In.Pointer[s.In.Position:s.In.Size])
	s.In.Position += n
	s.InTotalRead += uint64(n)
	return n
}

// put moves bytes from src to the output and returns how many were moved.
func (s *Stream) put(src []byte) int {
	n := copy(s.Out.Pointer[s.Out.Position:s.Out.Size], src)
	s.Out.Position += n
	s.OutTotalWritten += uint64(n)
	return n
}

// Compress consumes input and produces compressed output. With flush set,
// a partially staged block is coded instead of waiting for more input.
func (s *Stream) Compress(flush bool) State {
	if st, ok := s.enter(phaseCompress); !ok {
		return st
	}
	s.state = s.compress(flush)
	return s.state
}

func (s *Stream) compress(flush bool) State {
	e := &s.enc
	for {
		if e.pending() > 0 {
			e.drained += s.put(e.record[e.drained:e.recordLen])
			if e.pending() > 0 {
				return StateStallOnOutputBuffer
			}
		}

		switch {
		case e.staged == e.blockSize:
			s.encodeStaged()
		case s.In.Remaining() > 0:
			e.staged += s.take(e.block[e.staged:e.blockSize])
		case e.staged == 0:
			if flush {
				return StateFinished
			}
			return StateReady
		case !flush:
			return StateStallOnInputBuffer
		default:
			s.encodeStaged()
		}
	}
}

// encodeStaged turns the staged input into a block record.
func (s *Stream) encodeStaged() {
	e := &s.enc
	in := NewByteBuffer(e.block, 0, e.staged)
	out := NewByteBuffer(e.record, BlockHeaderSize, BlockHeaderSize+e.blockSize)
	header, payload := s.coder.CompressBlock(&in, &out, e.attempt)
	if header.Mode == ModeCopy {
		copy(e.record[BlockHeaderSize:], payload)
	}
	header.put(e.record)
	e.recordLen = BlockHeaderSize + len(payload)
	e.drained = 0
	e.staged = 0
}

// CompressFinish codes any staged input, drains everything and ends the
// session. It returns StateStallOnOutputBuffer until the output has been
// drained enough, then StateFinished.
func (s *Stream) CompressFinish() State {
	if st, ok := s.enter(phaseCompress); !ok {
		return st
	}
	s.state = s.compress(true)
	if s.state == StateFinished {
		s.phase = phaseFinished
	}
	return s.state
}

// Decompress consumes compressed input and produces the original bytes.
// With flush set, StateFinished is returned once the input ends cleanly
// at a block boundary.
func (s *Stream) Decompress(flush bool) State {
	if st, ok := s.enter(phaseDecompress); !ok {
		return st
	}
	s.state = s.decompress(flush)
	return s.state
}

func (s *Stream) decompress(flush bool) State {
	d := &s.dec
	for {
		if d.pending() > 0 {
			d.drained += s.put(d.decoded[d.drained:d.decodedLen])
			if d.pending() > 0 {
				return StateStallOnOutputBuffer
			}
		}

		switch d.step {
		case stepFileHeader:
			if !s.fill(d.scratch[:FileHeaderSize]) {
				return StateStallOnInputBuffer
			}
			h, err := ParseFileHeader(d.scratch[:FileHeaderSize])
			if err != nil {
				return s.fail(StateErrorCorruptInput, err)
			}
			d.header = h
			size := int(h.BufferSize)
			if cap(d.payload) < size {
				d.payload = make([]byte, size)
				d.decoded = make([]byte, size)
			}
			d.payload = d.payload[:size]
			d.decoded = d.decoded[:size]
			d.step = stepBlockHeader

		case stepBlockHeader:
			if s.In.Remaining() == 0 && d.staged == 0 {
				if flush {
					return StateFinished
				}
				return StateReady
			}
			if !s.fill(d.scratch[:BlockHeaderSize]) {
				return StateStallOnInputBuffer
			}
			h, err := ParseBlockHeader(d.scratch[:BlockHeaderSize])
			if err == nil {
				err = h.checkPayload(d.header.BufferSize)
			}
			if err != nil {
				return s.fail(StateErrorCorruptInput, err)
			}
			d.block = h
			d.step = stepPayload

		case stepPayload:
			payload := d.payload[:d.block.NextBlock]
			if !s.fill(payload) {
				return StateStallOnInputBuffer
			}
			in := NewByteBuffer(payload, 0, len(payload))
			out := NewByteBuffer(d.decoded, 0, len(d.decoded))
			if err := s.coder.DecodeBlock(&in, &out, d.block.Mode); err != nil {
				return s.fail(StateErrorCorruptInput, err)
			}
			d.decodedLen = out.Position
			d.drained = 0
			d.step = stepBlockHeader
		}
	}
}

// fill collects input into dst across calls. It reports whether dst is
// complete.
func (s *Stream) fill(dst []byte) bool {
	d := &s.dec
	d.staged += s.take(dst[d.staged:])
	if d.staged < len(dst) {
		return false
	}
	d.staged = 0
	return true
}

// DecompressFinish drains the remaining output and ends the session. It
// returns StateErrorCorruptInput if the input stopped inside a header or
// block.
func (s *Stream) DecompressFinish() State {
	if st, ok := s.enter(phaseDecompress); !ok {
		return st
	}
	switch st := s.decompress(true); st {
	case StateFinished:
		s.phase = phaseFinished
		s.state = st
	case StateStallOnInputBuffer:
		s.fail(StateErrorCorruptInput, fmt.Errorf("%w: input ends inside a block", ErrTruncated))
	default:
		s.state = st
	}
	return s.state
}
