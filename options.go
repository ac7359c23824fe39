package sharc

import "fmt"

// A Level selects how hard the encoder tries.
type Level int

const (
	// LevelFastest encodes each block in a single dictionary pass.
	LevelFastest Level = 0
	// LevelBetter also tries a second pass over the coded output and keeps
	// whichever result is smaller.
	LevelBetter Level = 1
)

// mode returns the block mode attempted at this level.
func (l Level) mode() Mode {
	if l >= LevelBetter {
		return ModeDualPass
	}
	return ModeSinglePass
}

const (
	// DefaultBlockSize is the preferred buffer size written to file headers.
	DefaultBlockSize = 1 << 18

	MinBlockSize = 1
	MaxBlockSize = 1 << 24
)

// Options configures compression.
type Options struct {
	Level Level

	// BlockSize is the number of input bytes coded per block.
	// The default is DefaultBlockSize.
	BlockSize int

	// Hash is the hash strategy used by the dictionary.
	// The default is MultiplicativeHash.
	Hash HashFunction
}

// DefaultOptions returns single-pass options with the preferred block size.
func DefaultOptions() *Options {
	return &Options{
		Level:     LevelFastest,
		BlockSize: DefaultBlockSize,
		Hash:      MultiplicativeHash{},
	}
}

// Validate checks that the options describe a usable configuration.
func (o *Options) Validate() error {
	if o.Level < LevelFastest || o.Level > LevelBetter {
		return fmt.Errorf("%w: level %d out of range [%d,%d]", ErrInvalidOptions, o.Level, LevelFastest, LevelBetter)
	}
	if o.BlockSize < MinBlockSize || o.BlockSize > MaxBlockSize {
		return fmt.Errorf("%w: block size %d out of range [%d,%d]", ErrInvalidOptions, o.BlockSize, MinBlockSize, MaxBlockSize)
	}
	return nil
}

// withDefaults returns a copy of o with zero fields replaced by defaults.
func (o *Options) withDefaults() Options {
	if o == nil {
		return *DefaultOptions()
	}
	c := *o
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Hash == nil {
		c.Hash = MultiplicativeHash{}
	}
	return c
}
