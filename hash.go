package sharc

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/pierrec/xxHash/xxHash32"
)

// A HashFunction maps a dictionary key to a 32-bit hash. The key packs a
// prefix code and the byte that extends it: prefix<<8 | next.
//
// The Dictionary uses the high bits of the result, so implementations
// should mix well into them.
type HashFunction interface {
	Hash(key uint32) uint32
}

// HashFunc adapts an ordinary function to the HashFunction interface.
type HashFunc func(key uint32) uint32

func (f HashFunc) Hash(key uint32) uint32 {
	return f(key)
}

const hashMul32 = 0x1e35a7bd

// MultiplicativeHash is a single multiply. It is the fastest strategy and
// the default.
type MultiplicativeHash struct{}

func (MultiplicativeHash) Hash(key uint32) uint32 {
	return key * hashMul32
}

// XXHash32 hashes keys with 32-bit xxHash.
type XXHash32 struct {
	Seed uint32
}

func (x XXHash32) Hash(key uint32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], key)
	return xxHash32.Checksum(b[:], x.Seed)
}

// XXHash64 hashes keys with 64-bit xxHash, folded to 32 bits.
type XXHash64 struct{}

func (XXHash64) Hash(key uint32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], key)
	h := xxhash.Sum64(b[:])
	return uint32(h>>32) ^ uint32(h)
}

// HashNames lists the names accepted by HashByName.
var HashNames = []string{"multiplicative", "xxhash32", "xxhash64"}

// HashByName returns the hash strategy with the given name.
func HashByName(name string) (HashFunction, error) {
	switch name {
	case "", "multiplicative":
		return MultiplicativeHash{}, nil
	case "xxhash32":
		return XXHash32{}, nil
	case "xxhash64":
		return XXHash64{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHash, name)
}
