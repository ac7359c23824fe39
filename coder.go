package sharc

import "fmt"

// A BlockCoder turns one block of input into a stream of 16-bit
// dictionary codes and back. Every block is coded with a fresh
// dictionary, so blocks can be decoded independently.
//
// The zero value is ready to use. A BlockCoder is not safe for
// concurrent use; give each session its own.
type BlockCoder struct {
	// Hash is the dictionary's hash strategy. The default is
	// MultiplicativeHash.
	Hash HashFunction

	dict    *Dictionary
	scratch []byte
}

// NewBlockCoder returns a coder whose dictionary hashes with h.
func NewBlockCoder(h HashFunction) *BlockCoder {
	return &BlockCoder{Hash: h}
}

// Dictionary returns the dictionary left behind by the most recent
// coding pass.
func (c *BlockCoder) Dictionary() *Dictionary {
	if c.dict == nil {
		c.dict = NewDictionary(c.Hash)
	}
	return c.dict
}

func (c *BlockCoder) scratchBuffer(n int) []byte {
	if cap(c.scratch) < n {
		c.scratch = make([]byte, n)
	}
	return c.scratch[:n]
}

// EncodeBlock codes the unread bytes of in into out, starting at
// out.Position, and returns the mode actually reached.
//
// A coded mode is only reported when its output is strictly smaller than
// the input. Otherwise EncodeBlock returns ModeCopy, leaves out.Position
// where it was, and the caller must store the input bytes instead. With
// ModeDualPass, the smaller of the single-pass and dual-pass results is
// kept. The cursor of in always ends at in.Size.
func (c *BlockCoder) EncodeBlock(in, out *ByteBuffer, attempt Mode) Mode {
	src := in.Unread()
	in.Position = in.Size

	switch attempt {
	case ModeSinglePass:
		if c.encode(src, out) {
			return ModeSinglePass
		}

	case ModeDualPass:
		first := NewByteBuffer(c.scratchBuffer(len(src)), 0, len(src))
		if !c.encode(src, &first) {
			break
		}
		if c.encode(first.Bytes(), out) {
			return ModeDualPass
		}
		if _, err := out.Write(first.Bytes()); err == nil {
			return ModeSinglePass
		}
	}

	return ModeCopy
}

// encode runs one dictionary pass over src. It fails, leaving out
// untouched, as soon as the output would not be smaller than src or
// would not fit.
func (c *BlockCoder) encode(src []byte, out *ByteBuffer) bool {
	d := c.Dictionary()
	d.Reset()
	if len(src) == 0 {
		return false
	}

	// Coding must end at least one byte short of len(src).
	limit := out.Size
	if l := out.Position + len(src) - 1; l < limit {
		limit = l
	}
	w := NewByteBuffer(out.Pointer, out.Position, limit)

	cur := uint16(src[0])
	for _, b := range src[1:] {
		if code, ok := d.Lookup(cur, b); ok {
			cur = code
			continue
		}
		if w.WriteUint16(cur) != nil {
			return false
		}
		d.Insert(cur, b)
		cur = uint16(b)
	}

	if w.WriteUint16(cur) != nil {
		return false
	}
	out.Position = w.Position
	return true
}

// DecodeBlock reverses EncodeBlock: it decodes the unread bytes of in,
// coded with mode, and writes the result to out at out.Position.
// On error, out.Position is unchanged.
func (c *BlockCoder) DecodeBlock(in, out *ByteBuffer, mode Mode) error {
	src := in.Unread()

	switch mode {
	case ModeCopy:
		if _, err := out.Write(src); err != nil {
			return fmt.Errorf("%w: %d bytes with %d remaining", ErrOutputOverflow, len(src), out.Remaining())
		}

	case ModeSinglePass:
		if err := c.decode(src, out); err != nil {
			return err
		}

	case ModeDualPass:
		// The intermediate stream is shorter than the block it expands to.
		n := out.Remaining()
		mid := NewByteBuffer(c.scratchBuffer(n), 0, n)
		if err := c.decode(src, &mid); err != nil {
			return err
		}
		if err := c.decode(mid.Bytes(), out); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownMode, byte(mode))
	}

	in.Position = in.Size
	return nil
}

// decode runs one dictionary pass in reverse. The dictionary is rebuilt
// in the same order the encoder built it: each code after the first adds
// the previous sequence extended by the first byte of the current one.
func (c *BlockCoder) decode(src []byte, out *ByteBuffer) error {
	if len(src)%2 != 0 {
		return fmt.Errorf("%w: payload of %d bytes", ErrTruncatedCode, len(src))
	}
	d := c.Dictionary()
	d.Reset()

	codes := NewByteBuffer(src, 0, len(src))
	pos := out.Position
	prev := -1
	for {
		i := codes.Position
		code, err := codes.ReadUint16()
		if err != nil {
			break
		}
		next := d.NextCode()

		var first byte
		switch {
		case int(code) < next:
			first = d.First(code)
		case int(code) == next && prev >= 0:
			// The encoder used a code in the same step that created it,
			// so the sequence is the previous one plus its own first byte.
			first = d.First(uint16(prev))
		default:
			return fmt.Errorf("%w: code %d at offset %d, next code %d", ErrInvalidCode, code, i, next)
		}

		if prev >= 0 {
			d.Insert(uint16(prev), first)
		}

		n := d.Len(code)
		if n > out.Size-pos {
			return fmt.Errorf("%w: %d bytes decoded, %d more needed, bound %d", ErrOutputOverflow, pos-out.Position, n, out.Size-out.Position)
		}
		d.Expand(code, out.Pointer[pos:pos+n])
		pos += n
		prev = int(code)
	}

	out.Position = pos
	return nil
}

// CompressBlock encodes the unread bytes of in and returns the block
// header together with the payload to store after it. The payload
// aliases out when a coded mode was reached, and in otherwise.
func (c *BlockCoder) CompressBlock(in, out *ByteBuffer, attempt Mode) (BlockHeader, []byte) {
	raw := in.Unread()
	start := out.Position
	mode := c.EncodeBlock(in, out, attempt)

	payload := raw
	if mode != ModeCopy {
		payload = out.Pointer[start:out.Position]
	}
	return NewBlockHeader(mode, uint32(len(payload))), payload
}
