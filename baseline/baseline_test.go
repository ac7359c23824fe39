package baseline

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/andybalholm/sharc"
)

func testData(n int) []byte {
	words := strings.Fields("lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor")
	rng := rand.New(rand.NewSource(1))
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[rng.Intn(len(words))])
		b.WriteByte(' ')
	}
	return b.Bytes()[:n]
}

func TestAllCodecsRoundTrip(t *testing.T) {
	codecs, closeAll, err := All(sharc.Options{BlockSize: 1 << 14})
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll()

	noise := make([]byte, 5000)
	rand.New(rand.NewSource(2)).Read(noise)

	for _, data := range [][]byte{testData(100000), noise, []byte("x")} {
		results, err := MeasureAll(codecs, data)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != len(codecs) {
			t.Fatalf("%d results for %d codecs", len(results), len(codecs))
		}
		for _, r := range results {
			if r.In != len(data) || r.Out == 0 {
				t.Errorf("%s: in=%d out=%d", r.Codec, r.In, r.Out)
			}
		}
	}
}

func TestSharcCompressesText(t *testing.T) {
	data := testData(200000)
	for _, level := range []sharc.Level{sharc.LevelFastest, sharc.LevelBetter} {
		r, err := Measure(Sharc{Options: sharc.Options{Level: level}}, data)
		if err != nil {
			t.Fatal(err)
		}
		if r.Ratio() <= 1.5 {
			t.Errorf("%s: ratio %.2f", r.Codec, r.Ratio())
		}
	}
}

type brokenCodec struct{ Snappy }

func (brokenCodec) Decompress(src []byte, size int) ([]byte, error) {
	return make([]byte, size), nil
}

func TestMeasureMismatch(t *testing.T) {
	if _, err := Measure(brokenCodec{}, []byte("not all zeros")); !errors.Is(err, ErrMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestLZ4Incompressible(t *testing.T) {
	src := make([]byte, 300)
	rand.New(rand.NewSource(3)).Read(src)
	out, err := LZ4{}.Compress(src)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != lz4Raw || len(out) != len(src)+1 {
		t.Fatalf("flag %d, %d bytes", out[0], len(out))
	}
}

func BenchmarkCodecs(b *testing.B) {
	data := testData(1 << 20)
	codecs, closeAll, err := All(sharc.Options{})
	if err != nil {
		b.Fatal(err)
	}
	defer closeAll()

	for _, c := range codecs {
		c := c
		b.Run(c.Name(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			out, err := c.Compress(data)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportMetric(float64(len(data))/float64(len(out)), "ratio")
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Compress(data)
			}
		})
	}
}
