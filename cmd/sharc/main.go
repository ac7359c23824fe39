// Command sharc compresses and decompresses files in the sharc format.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/sharc"
	"github.com/andybalholm/sharc/internal/log"
)

const suffix = ".sharc"

type config struct {
	opts       sharc.Options
	decompress bool
	compare    bool
	dump       bool
	logLevel   log.Level
	files      []string
}

// op names what the command does to each file.
func (c *config) op() string {
	switch {
	case c.compare:
		return "compare"
	case c.dump:
		return "dump"
	case c.decompress:
		return "decompress"
	}
	return "compress"
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "sharc %d.%d.%d\n", sharc.MajorVersion, sharc.MinorVersion, sharc.Revision)
		fmt.Fprintf(out, "Usage: sharc [OPTIONS]... [FILES]...\n\n")
		fs.PrintDefaults()
	}
}

// parseArgs returns nil, after printing usage, when the command should not
// run: no files or invalid arguments.
func parseArgs(args []string, stderr io.Writer) *config {
	fs := flag.NewFlagSet("sharc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	level := fs.Int("c", int(sharc.LevelFastest), "compression `level`: 0 = fastest, 1 = better (dual pass)")
	blockSize := fs.Int("b", sharc.DefaultBlockSize, "block `size` in bytes")
	hashName := fs.String("hash", "multiplicative", fmt.Sprintf("dictionary hash `name`, one of %v", sharc.HashNames))
	logLevel := fs.String("log-level", "info", "log `level`: debug, info, warn or error")
	verbose := fs.Bool("v", false, "verbose logging, same as -log-level debug")
	var c config
	fs.BoolVar(&c.decompress, "d", false, "decompress files")
	fs.BoolVar(&c.compare, "compare", false, "compare against baseline compressors instead of writing files")
	fs.BoolVar(&c.dump, "dump", false, "print the blocks of compressed files")

	if err := fs.Parse(args); err != nil {
		return nil
	}
	c.files = fs.Args()
	if len(c.files) == 0 {
		fs.Usage()
		return nil
	}

	invalid := func(err error) *config {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return nil
	}
	h, err := sharc.HashByName(*hashName)
	if err != nil {
		return invalid(err)
	}
	c.opts = sharc.Options{Level: sharc.Level(*level), BlockSize: *blockSize, Hash: h}
	if err := c.opts.Validate(); err != nil {
		return invalid(err)
	}
	if c.logLevel, err = log.ParseLevel(*logLevel); err != nil {
		return invalid(err)
	}
	if *verbose {
		c.logLevel = log.LevelDebug
	}
	return &c
}

func main() {
	c := parseArgs(os.Args[1:], os.Stderr)
	if c == nil {
		return
	}
	logger := log.NewStandardLogger(
		log.WithLevel(c.logLevel),
		log.WithInitialFields(map[string]interface{}{"op": c.op()}),
	)

	for _, name := range c.files {
		l := logger.WithField("file", name)
		var err error
		switch c.op() {
		case "compare":
			err = compareFile(os.Stdout, name, c.opts)
		case "dump":
			err = dumpFile(os.Stdout, name)
		case "decompress":
			err = decompressFile(l, name)
		default:
			err = compressFile(l, name, c.opts)
		}
		if err != nil {
			l.Fatal("%v", err)
		}
	}
}
