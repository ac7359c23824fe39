package sharc

const (
	seedCodes = 256
	maxCodes  = 1 << 16

	// DictionaryCapacity is the number of keys a Dictionary can assign
	// beyond the 256 single-byte seed codes.
	DictionaryCapacity = maxCodes - seedCodes

	dictTableBits = 17
	dictTableSize = 1 << dictTableBits
	// dictTableMask is redundant, but helps the compiler eliminate bounds
	// checks.
	dictTableMask = dictTableSize - 1
	dictShift     = 32 - dictTableBits
)

// A slot is one bucket of the open addressing table. It is occupied when
// gen matches the dictionary's current generation.
type slot struct {
	key  uint32
	gen  uint32
	code uint16
}

// An entry describes the sequence behind an assigned code.
type entry struct {
	prefix uint16
	last   byte
	first  byte
	length uint32
}

// A Dictionary maps byte sequences to 16-bit codes. Sequences are built
// incrementally: each key is an existing code followed by one more byte.
// Codes 0-255 stand for the single bytes and are never stored; assigned
// codes start at 256 and grow by one per insertion until the dictionary
// is full.
//
// The same structure serves the decoder, which needs the reverse
// mapping from a code back to its bytes.
type Dictionary struct {
	hash HashFunction

	table   []slot
	entries []entry
	gen     uint32

	maxKeyLength int
}

// NewDictionary returns an empty dictionary that hashes keys with h.
// A nil h selects MultiplicativeHash.
func NewDictionary(h HashFunction) *Dictionary {
	if h == nil {
		h = MultiplicativeHash{}
	}
	d := &Dictionary{
		hash:    h,
		table:   make([]slot, dictTableSize),
		entries: make([]entry, 0, DictionaryCapacity),
	}
	d.Reset()
	return d
}

// Reset forgets every assigned code. Slots are invalidated by bumping the
// generation; the table is only cleared when the generation wraps.
func (d *Dictionary) Reset() {
	d.gen++
	if d.gen == 0 {
		for i := range d.table {
			d.table[i] = slot{}
		}
		d.gen = 1
	}
	d.entries = d.entries[:0]
	d.maxKeyLength = 1
}

// Lookup returns the code assigned to prefix followed by next.
func (d *Dictionary) Lookup(prefix uint16, next byte) (code uint16, ok bool) {
	key := uint32(prefix)<<8 | uint32(next)
	for i := d.hash.Hash(key) >> dictShift; ; i = (i + 1) & dictTableMask {
		s := &d.table[i]
		if s.gen != d.gen {
			return 0, false
		}
		if s.key == key {
			return s.code, true
		}
	}
}

// Insert assigns NextCode to prefix followed by next. It returns false,
// and changes nothing, when the dictionary is full. prefix must already
// be a valid code.
func (d *Dictionary) Insert(prefix uint16, next byte) bool {
	if d.Full() {
		return false
	}
	code := d.NextCode()
	key := uint32(prefix)<<8 | uint32(next)

	i := d.hash.Hash(key) >> dictShift
	for d.table[i].gen == d.gen {
		i = (i + 1) & dictTableMask
	}
	d.table[i] = slot{key: key, gen: d.gen, code: uint16(code)}

	e := entry{
		prefix: prefix,
		last:   next,
		first:  d.First(prefix),
		length: uint32(d.Len(prefix)) + 1,
	}
	d.entries = append(d.entries, e)
	if int(e.length) > d.maxKeyLength {
		d.maxKeyLength = int(e.length)
	}
	return true
}

// NextCode is the code the next successful Insert will assign.
func (d *Dictionary) NextCode() int {
	return seedCodes + len(d.entries)
}

// UsedKeys returns the number of codes assigned since the last Reset.
func (d *Dictionary) UsedKeys() int {
	return len(d.entries)
}

// MaxKeyLength returns the length of the longest sequence represented.
func (d *Dictionary) MaxKeyLength() int {
	return d.maxKeyLength
}

func (d *Dictionary) Capacity() int {
	return DictionaryCapacity
}

func (d *Dictionary) Full() bool {
	return len(d.entries) == DictionaryCapacity
}

// Len returns the number of bytes code stands for.
func (d *Dictionary) Len(code uint16) int {
	if code < seedCodes {
		return 1
	}
	return int(d.entries[code-seedCodes].length)
}

// First returns the first byte of the sequence code stands for.
func (d *Dictionary) First(code uint16) byte {
	if code < seedCodes {
		return byte(code)
	}
	return d.entries[code-seedCodes].first
}

// Expand writes the sequence for code into dst, which must be exactly
// Len(code) bytes long.
func (d *Dictionary) Expand(code uint16, dst []byte) {
	for i := len(dst) - 1; i > 0; i-- {
		e := &d.entries[code-seedCodes]
		dst[i] = e.last
		code = e.prefix
	}
	dst[0] = byte(code)
}

// AppendSequence appends the sequence for code to dst.
func (d *Dictionary) AppendSequence(dst []byte, code uint16) []byte {
	n := d.Len(code)
	start := len(dst)
	for i := 0; i < n; i++ {
		dst = append(dst, 0)
	}
	d.Expand(code, dst[start:])
	return dst
}
