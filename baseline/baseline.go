// Package baseline measures sharc against established block compressors on
// the same input, so a block size or level can be judged against
// something familiar.
package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// ErrMismatch is returned by Measure when a codec does not reproduce its
// input.
var ErrMismatch = errors.New("baseline: round trip mismatch")

// A Codec compresses and decompresses whole buffers.
type Codec interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	// Decompress restores src, which decompresses to size bytes.
	Decompress(src []byte, size int) ([]byte, error)
}

// Result is one codec's measurement on one input.
type Result struct {
	Codec  string
	In     int
	Out    int
	Encode time.Duration
	Decode time.Duration
}

// Ratio returns In/Out.
func (r Result) Ratio() float64 {
	if r.Out == 0 {
		return 0
	}
	return float64(r.In) / float64(r.Out)
}

// EncodeSpeed returns the compression throughput in MB/s.
func (r Result) EncodeSpeed() float64 {
	return mbps(r.In, r.Encode)
}

// DecodeSpeed returns the decompression throughput in MB/s.
func (r Result) DecodeSpeed() float64 {
	return mbps(r.In, r.Decode)
}

func mbps(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / 1e6 / d.Seconds()
}

// Measure compresses and decompresses data with c, checking that the
// round trip is exact.
func Measure(c Codec, data []byte) (Result, error) {
	r := Result{Codec: c.Name(), In: len(data)}

	start := time.Now()
	compressed, err := c.Compress(data)
	r.Encode = time.Since(start)
	if err != nil {
		return r, fmt.Errorf("%s: compress: %w", c.Name(), err)
	}
	r.Out = len(compressed)

	start = time.Now()
	decompressed, err := c.Decompress(compressed, len(data))
	r.Decode = time.Since(start)
	if err != nil {
		return r, fmt.Errorf("%s: decompress: %w", c.Name(), err)
	}
	if !bytes.Equal(decompressed, data) {
		return r, fmt.Errorf("%w: %s", ErrMismatch, c.Name())
	}
	return r, nil
}

// MeasureAll runs Measure for every codec, stopping at the first error.
func MeasureAll(codecs []Codec, data []byte) ([]Result, error) {
	results := make([]Result, 0, len(codecs))
	for _, c := range codecs {
		r, err := Measure(c, data)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
