package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/sharc"
	"github.com/andybalholm/sharc/internal/log"
)

const streamBufferSize = 1 << 20

// pump runs a stream session from r to w until it finishes.
func pump(s *sharc.Stream, r io.Reader, w io.Writer, run func(flush bool) sharc.State, finish func() sharc.State) error {
	eof := false
	flushOut := func() error {
		if s.Out.Position == 0 {
			return nil
		}
		_, err := w.Write(s.Out.Bytes())
		s.Out.Rewind()
		return err
	}

	for {
		if s.In.Remaining() == 0 && !eof {
			n, err := io.ReadFull(r, s.In.Pointer)
			switch {
			case err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF):
				eof = true
			case err != nil:
				return err
			}
			s.In.Reset(n)
		}

		st := run(eof)
		switch {
		case st == sharc.StateFinished:
			for {
				st = finish()
				if err := flushOut(); err != nil {
					return err
				}
				if st == sharc.StateFinished {
					return nil
				}
				if st != sharc.StateStallOnOutputBuffer {
					return streamError(s, st)
				}
			}
		case st == sharc.StateStallOnOutputBuffer:
			if err := flushOut(); err != nil {
				return err
			}
		case st == sharc.StateStallOnInputBuffer && eof:
			// The input ended inside a block; finish reports why.
			return streamError(s, finish())
		case st.IsError():
			return streamError(s, st)
		}
	}
}

func streamError(s *sharc.Stream, st sharc.State) error {
	if err := s.Err(); err != nil {
		return fmt.Errorf("%s: %w", st, err)
	}
	return errors.New(st.String())
}

func newStream() *sharc.Stream {
	s := new(sharc.Stream)
	s.Prepare(make([]byte, streamBufferSize), make([]byte, streamBufferSize))
	return s
}

func logStats(l log.Logger, action string, s *sharc.Stream, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(s.InTotalRead) / 1e6 / elapsed.Seconds()
	}
	fields := map[string]interface{}{
		"in":    s.InTotalRead,
		"out":   s.OutTotalWritten,
		"ms":    ms,
		"speed": fmt.Sprintf("%.1fMB/s", speed),
	}
	if action == "compressed" && s.InTotalRead > 0 {
		fields["ratio"] = fmt.Sprintf("%.4f", float64(s.OutTotalWritten)/float64(s.InTotalRead))
	}
	l.WithFields(fields).Info(action)
}

func compressFile(l log.Logger, name string, opts sharc.Options) error {
	in, err := os.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}

	outName := name + suffix
	out, err := os.Create(outName)
	if err != nil {
		return err
	}
	defer out.Close()
	l.Debug("writing %s with level %d, block size %d", outName, opts.Level, opts.BlockSize)

	start := time.Now()
	s := newStream()
	meta := sharc.SourceMetadata{Size: uint64(fi.Size()), ModTime: fi.ModTime()}
	if st := s.CompressInitWithMetadata(&opts, meta); st != sharc.StateReady {
		return streamError(s, st)
	}
	s.In.Reset(0)
	if err := pump(s, in, out, s.Compress, s.CompressFinish); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logStats(l, "compressed", s, time.Since(start))
	return nil
}

// decompressedName strips the .sharc suffix, or appends .dec when there
// is none.
func decompressedName(name string) string {
	if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
		return strings.TrimSuffix(name, suffix)
	}
	return name + ".dec"
}

func decompressFile(l log.Logger, name string) error {
	in, err := os.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	outName := decompressedName(name)
	out, err := os.Create(outName)
	if err != nil {
		return err
	}
	defer out.Close()
	l.Debug("writing %s", outName)

	start := time.Now()
	s := newStream()
	if st := s.DecompressInit(); st != sharc.StateReady {
		return streamError(s, st)
	}
	s.In.Reset(0)
	if err := pump(s, in, out, s.Decompress, s.DecompressFinish); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logStats(l, "decompressed", s, time.Since(start))

	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	h, err := sharc.NewReader(in).Header()
	if err == nil && !h.Metadata.ModTime.IsZero() {
		if err := os.Chtimes(outName, h.Metadata.ModTime, h.Metadata.ModTime); err != nil {
			l.Warn("cannot restore modification time: %v", err)
		}
	}
	return nil
}
