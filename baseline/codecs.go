package baseline

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/andybalholm/sharc"
)

// Sharc is the codec under test.
type Sharc struct {
	Options sharc.Options
}

func (c Sharc) Name() string {
	if c.Options.Level >= sharc.LevelBetter {
		return "sharc-better"
	}
	return "sharc-fastest"
}

func (c Sharc) Compress(src []byte) ([]byte, error) {
	return sharc.Compress(src, &c.Options)
}

func (c Sharc) Decompress(src []byte, size int) ([]byte, error) {
	return sharc.Decompress(src)
}

// Snappy is github.com/golang/snappy in block form.
type Snappy struct{}

func (Snappy) Name() string { return "snappy" }

func (Snappy) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (Snappy) Decompress(src []byte, size int) ([]byte, error) {
	return snappy.Decode(make([]byte, size), src)
}

// S2 is the snappy extension from github.com/klauspost/compress.
type S2 struct{}

func (S2) Name() string { return "s2" }

func (S2) Compress(src []byte) ([]byte, error) {
	return s2.Encode(nil, src), nil
}

func (S2) Decompress(src []byte, size int) ([]byte, error) {
	return s2.Decode(make([]byte, size), src)
}

// LZ4 stores one LZ4 block, or the raw input when LZ4 cannot shrink it.
// The first byte tells which.
type LZ4 struct{}

const (
	lz4Raw   = 0
	lz4Block = 1
)

func (LZ4) Name() string { return "lz4" }

func (LZ4) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, 1+lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(src) {
		dst[0] = lz4Raw
		return append(dst[:1], src...), nil
	}
	dst[0] = lz4Block
	return dst[:1+n], nil
}

func (LZ4) Decompress(src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("lz4 decompress: empty input")
	}
	if src[0] == lz4Raw {
		return append([]byte(nil), src[1:]...), nil
	}
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src[1:], dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompress: expected %d bytes, got %d", size, n)
	}
	return dst, nil
}

// Zstd shares one encoder and one decoder between calls.
type Zstd struct {
	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd returns a Zstd codec at the given level.
func NewZstd(level zstd.EncoderLevel) (*Zstd, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Zstd{encoder: encoder, decoder: decoder}, nil
}

func (z *Zstd) Name() string { return "zstd" }

func (z *Zstd) Compress(src []byte) ([]byte, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.encoder.EncodeAll(src, nil), nil
}

func (z *Zstd) Decompress(src []byte, size int) ([]byte, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.decoder.DecodeAll(src, make([]byte, 0, size))
}

// Close releases the encoder and decoder.
func (z *Zstd) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.encoder != nil {
		z.encoder.Close()
		z.encoder = nil
	}
	if z.decoder != nil {
		z.decoder.Close()
		z.decoder = nil
	}
	return nil
}

// Brotli is github.com/andybalholm/brotli at a fixed quality.
type Brotli struct {
	Level int
}

func (Brotli) Name() string { return "brotli" }

func (c Brotli) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, c.Level)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Brotli) Decompress(src []byte, size int) ([]byte, error) {
	dst := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := io.Copy(dst, brotli.NewReader(bytes.NewReader(src))); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

// All returns one of each codec. Codecs that hold resources are released
// by the returned close function.
func All(opts sharc.Options) ([]Codec, func() error, error) {
	fastest, better := opts, opts
	fastest.Level = sharc.LevelFastest
	better.Level = sharc.LevelBetter

	z, err := NewZstd(zstd.SpeedFastest)
	if err != nil {
		return nil, nil, err
	}
	codecs := []Codec{
		Sharc{Options: fastest},
		Sharc{Options: better},
		Snappy{},
		S2{},
		LZ4{},
		z,
		Brotli{Level: brotli.BestSpeed},
	}
	return codecs, z.Close, nil
}
