package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/andybalholm/sharc"
	"github.com/andybalholm/sharc/baseline"
)

// dumpFile prints the file header and every block of a compressed file.
func dumpFile(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return dump(w, bufio.NewReader(f))
}

func dump(w io.Writer, r io.Reader) error {
	var hbuf [sharc.FileHeaderSize]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		return fmt.Errorf("%w: reading file header", sharc.ErrTruncated)
	}
	h, err := sharc.ParseFileHeader(hbuf[:])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "version %d.%d.%d, block size %d, source %d bytes", h.Major, h.Minor, h.Revision, h.BufferSize, h.Metadata.Size)
	if !h.Metadata.ModTime.IsZero() {
		fmt.Fprintf(w, ", modified %s", h.Metadata.ModTime.Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	payload := make([]byte, h.BufferSize)
	var line []byte
	for i := 0; ; i++ {
		var bbuf [sharc.BlockHeaderSize]byte
		if _, err := io.ReadFull(r, bbuf[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: block %d header", sharc.ErrTruncated, i)
		}
		bh, err := sharc.ParseBlockHeader(bbuf[:])
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if bh.NextBlock > h.BufferSize {
			return fmt.Errorf("block %d: %w", i, sharc.ErrPayloadSize)
		}
		p := payload[:bh.NextBlock]
		if _, err := io.ReadFull(r, p); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
				return fmt.Errorf("%w: block %d payload", sharc.ErrTruncated, i)
			}
			return err
		}

		fmt.Fprintf(w, "block %d: %s, %d bytes\n", i, bh.Mode, bh.NextBlock)
		line = sharc.AppendText(line[:0], p, bh.Mode)
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
}

// compareFile prints a table of every baseline codec's results on the
// file's contents.
func compareFile(w io.Writer, name string, opts sharc.Options) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	codecs, closeCodecs, err := baseline.All(opts)
	if err != nil {
		return err
	}
	defer closeCodecs()

	results, err := baseline.MeasureAll(codecs, data)
	if err != nil {
		return err
	}
	return printResults(w, name, results)
}

func printResults(w io.Writer, name string, results []baseline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tin\tout\tratio\tencode MB/s\tdecode MB/s\t\n", name)
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.1f\t%.1f\t\n", r.Codec, r.In, r.Out, r.Ratio(), r.EncodeSpeed(), r.DecodeSpeed())
	}
	return tw.Flush()
}
