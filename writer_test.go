package sharc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	const blockSize = 1 << 12
	sizes := []int{0, 1, blockSize - 1, blockSize, 3*blockSize + 7}
	for _, level := range []Level{LevelFastest, LevelBetter} {
		for _, size := range sizes {
			for name, h := range hashFunctions {
				src := testText(size, int64(size))
				opts := &Options{Level: level, BlockSize: blockSize, Hash: h}
				compressed, err := Compress(src, opts)
				if err != nil {
					t.Fatalf("level %d size %d %s: %v", level, size, name, err)
				}

				blocks := (size + blockSize - 1) / blockSize
				if max := size + FileHeaderSize + blocks*BlockHeaderSize; len(compressed) > max {
					t.Errorf("level %d size %d %s: %d compressed bytes, bound %d", level, size, name, len(compressed), max)
				}

				got, err := Decompress(compressed)
				if err != nil {
					t.Fatalf("level %d size %d %s: decompress: %v", level, size, name, err)
				}
				if !bytes.Equal(got, src) {
					t.Fatalf("level %d size %d %s: round trip mismatch", level, size, name)
				}
			}
		}
	}
}

func TestHashDoesNotChangeOutput(t *testing.T) {
	src := testText(50000, 11)
	var want []byte
	for name, h := range hashFunctions {
		got, err := Compress(src, &Options{Level: LevelBetter, BlockSize: 1 << 14, Hash: h})
		if err != nil {
			t.Fatal(err)
		}
		if want == nil {
			want = got
			continue
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s produced different output", name)
		}
	}
}

func TestWriterSmallWrites(t *testing.T) {
	src := testText(10000, 12)
	want, err := Compress(src, &Options{BlockSize: 1000})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, &Options{BlockSize: 1000})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(src); i += 37 {
		end := i + 37
		if end > len(src) {
			end = len(src)
		}
		if _, err := w.Write(src[i:end]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatal("chunked writes produced different output")
	}
}

func TestWriterClose(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != FileHeaderSize {
		t.Fatalf("empty stream is %d bytes, want %d", buf.Len(), FileHeaderSize)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := w.Write([]byte("late")); !errors.Is(err, ErrClosed) {
		t.Fatalf("Write after Close: %v", err)
	}

	buf.Reset()
	w.Reset(&buf)
	if _, err := w.Write([]byte("again")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(buf.Bytes())
	if err != nil || string(got) != "again" {
		t.Fatalf("after Reset: %q, %v", got, err)
	}
}

func TestNewWriterInvalidOptions(t *testing.T) {
	for _, opts := range []*Options{
		{Level: 7},
		{Level: -1},
		{BlockSize: -1},
		{BlockSize: MaxBlockSize + 1},
	} {
		if _, err := NewWriter(io.Discard, opts); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("%+v: err = %v", opts, err)
		}
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	meta := SourceMetadata{Size: 12345, ModTime: time.Unix(1700000000, 123)}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, &Options{BlockSize: 512})
	if err != nil {
		t.Fatal(err)
	}
	w.Metadata = meta
	if _, err := w.Write(testText(2000, 13)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	h, err := r.Header()
	if err != nil {
		t.Fatal(err)
	}
	if h.BufferSize != 512 || h.Major != MajorVersion || h.Minor != MinorVersion {
		t.Fatalf("header = %+v", h)
	}
	if h.Metadata.Size != meta.Size || !h.Metadata.ModTime.Equal(meta.ModTime) {
		t.Fatalf("metadata = %+v, want %+v", h.Metadata, meta)
	}
	got, err := io.ReadAll(r)
	if err != nil || len(got) != 2000 {
		t.Fatalf("read %d bytes, %v", len(got), err)
	}
}

func TestReaderErrors(t *testing.T) {
	src := testText(3000, 14)
	compressed, err := Compress(src, &Options{BlockSize: 1024})
	if err != nil {
		t.Fatal(err)
	}

	corrupt := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), compressed...))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"short header", compressed[:10], ErrTruncated},
		{"short block header", compressed[:FileHeaderSize+3], ErrTruncated},
		{"short payload", compressed[:len(compressed)-1], ErrTruncated},
		{"magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), ErrInvalidMagic},
		{"version", corrupt(func(b []byte) []byte { b[4] = MajorVersion + 1; return b }), ErrUnsupportedVersion},
		{"buffer size", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:], 0)
			return b
		}), ErrInvalidBufferSize},
		{"mode", corrupt(func(b []byte) []byte { b[FileHeaderSize] = 7; return b }), ErrUnknownMode},
		{"payload size", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[FileHeaderSize+4:], 1025)
			return b
		}), ErrPayloadSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReaderReset(t *testing.T) {
	a, _ := Compress([]byte("first stream"), nil)
	b, _ := Compress(testText(5000, 15), &Options{Level: LevelBetter, BlockSize: 100})

	r := NewReader(bytes.NewReader(a))
	got, err := io.ReadAll(r)
	if err != nil || string(got) != "first stream" {
		t.Fatalf("%q, %v", got, err)
	}
	r.Reset(bytes.NewReader(b))
	got, err = io.ReadAll(r)
	if err != nil || !bytes.Equal(got, testText(5000, 15)) {
		t.Fatalf("after Reset: %d bytes, %v", len(got), err)
	}
	// A smaller block size after Reset bounds each decoded block again.
	var overlong []byte
	fh, _ := NewFileHeader(10, SourceMetadata{})
	overlong = fh.AppendTo(overlong)
	overlong = NewBlockHeader(ModeSinglePass, 10).AppendTo(overlong)
	for _, code := range []uint16{'A', 256, 257, 258, 259} {
		overlong = binary.LittleEndian.AppendUint16(overlong, code)
	}
	if _, err := Decompress(overlong); !errors.Is(err, ErrOutputOverflow) {
		t.Fatalf("fresh reader: %v", err)
	}
	r.Reset(bytes.NewReader(overlong))
	if got, err := io.ReadAll(r); !errors.Is(err, ErrOutputOverflow) {
		t.Fatalf("reset reader: %d bytes, %v", len(got), err)
	}
}
