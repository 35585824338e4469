// Command nemesis compresses and decompresses Sega Mega Drive tile data
// using the Nemesis codec (see package nemesis). It operates on a single
// file pair, a doublestar glob of files, or a .tar.xz bundle.
package main

import (
	"archive/tar"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/nemesis/internal/cache"
	"github.com/elliotnunn/nemesis/internal/mmapio"
	"github.com/elliotnunn/nemesis/nemesis"
	"github.com/therootcompany/xz"
	"golang.org/x/exp/slices"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("nemesis", flag.ContinueOnError)
	compressOptimal := fs.Bool("c", false, "compress, using Optimal (length-limited Huffman) mode")
	compressAccurate := fs.Bool("ca", false, "compress, forcing Accurate (Shannon-Fano) mode")
	decompress := fs.Bool("d", false, "decompress")
	glob := fs.String("glob", "", "doublestar pattern selecting multiple input files for batch processing")
	bundleIn := fs.String("bundle", "", "path to a .tar.xz archive of input files")
	bundleOut := fs.String("bundle-out", "", "path to write the processed .tar archive (required with -bundle)")
	cacheDir := fs.String("cache-dir", "", "directory backing an on-disk memoization cache of compression results")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	modeCount := 0
	for _, b := range []bool{*compressOptimal, *compressAccurate, *decompress} {
		if b {
			modeCount++
		}
	}
	if modeCount != 1 {
		fmt.Fprintln(os.Stderr, "nemesis: exactly one of -c, -ca, -d is required")
		return 2
	}

	var mode nemesis.Mode
	doDecompress := *decompress
	if *compressAccurate {
		mode = nemesis.Accurate
	} else {
		mode = nemesis.Optimal
	}

	var c *cache.Cache
	if *cacheDir != "" {
		var err error
		c, err = cache.Open(1024, *cacheDir)
		if err != nil {
			slog.Error("opening cache", "dir", *cacheDir, "error", err)
			return 1
		}
		defer c.Close()
	} else {
		c = cache.New(256)
	}

	job := processor{mode: mode, decompress: doDecompress, cache: c}

	switch {
	case *bundleIn != "":
		if *bundleOut == "" {
			fmt.Fprintln(os.Stderr, "nemesis: -bundle requires -bundle-out")
			return 2
		}
		if err := job.runBundle(*bundleIn, *bundleOut); err != nil {
			slog.Error("bundle failed", "error", err)
			return 1
		}
		return 0

	case *glob != "":
		matches, err := doublestar.FilepathGlob(*glob)
		if err != nil {
			slog.Error("glob", "pattern", *glob, "error", err)
			return 1
		}
		slices.Sort(matches)
		matches = slices.Compact(matches)
		if len(matches) == 0 {
			slog.Warn("glob matched no files", "pattern", *glob)
		}
		failed := 0
		for _, in := range matches {
			out := job.defaultOutputName(in)
			if err := job.runFile(in, out); err != nil {
				slog.Error("processing", "file", in, "error", err)
				failed++
			}
		}
		if failed > 0 {
			return 1
		}
		return 0

	default:
		rest := fs.Args()
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "usage: nemesis (-c|-ca|-d) [-cache-dir DIR] INPUT OUTPUT")
			return 2
		}
		if err := job.runFile(rest[0], rest[1]); err != nil {
			slog.Error("processing", "file", rest[0], "error", err)
			return 1
		}
		return 0
	}
}

type processor struct {
	mode       nemesis.Mode
	decompress bool
	cache      *cache.Cache
}

func (p processor) defaultOutputName(in string) string {
	if p.decompress {
		return strings.TrimSuffix(in, ".nem")
	}
	return in + ".nem"
}

// runFile processes a single INPUT/OUTPUT pair. "-" means stdin or stdout,
// matching the historical tool's convenience convention.
func (p processor) runFile(in, out string) error {
	input, err := readInput(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	result, err := p.process(input)
	if err != nil {
		return err
	}

	return writeOutput(out, result)
}

func (p processor) process(input []byte) ([]byte, error) {
	cacheMode := uint8(p.mode)
	if p.decompress {
		cacheMode = 2
	}
	key := cache.KeyFor(cacheMode, input)
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}

	var out nemesis.ByteSliceWriter
	var err error
	if p.decompress {
		err = nemesis.Decompress(nemesis.NewByteSliceReader(input), &out)
	} else {
		err = nemesis.Compress(p.mode, nemesis.NewByteSliceReader(input), &out)
	}
	if err != nil {
		return nil, err
	}

	result := out.Bytes()
	if err := p.cache.Put(key, result); err != nil {
		slog.Warn("caching result failed", "error", err)
	}
	return result, nil
}

// runBundle unwraps a .tar.xz archive, processes each regular-file member
// through the codec, and re-emits a plain .tar with the same members.
func (p processor) runBundle(inPath, outPath string) error {
	inFile, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer inFile.Close()

	xr, err := xz.NewReader(inFile, xz.DefaultDictMax)
	if err != nil {
		return fmt.Errorf("opening xz stream: %w", err)
	}
	tr := tar.NewReader(xr)

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	tw := tar.NewWriter(outFile)
	defer tw.Close()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar member: %w", err)
		}

		if hdr.Typeflag != tar.TypeReg {
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			continue
		}

		raw, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("reading %s: %w", hdr.Name, err)
		}

		result, err := p.process(raw)
		if err != nil {
			return fmt.Errorf("processing %s: %w", hdr.Name, err)
		}

		outHdr := *hdr
		outHdr.Name = p.defaultOutputName(hdr.Name)
		outHdr.Size = int64(len(result))
		if err := tw.WriteHeader(&outHdr); err != nil {
			return err
		}
		if _, err := tw.Write(result); err != nil {
			return err
		}
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return mmapio.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !os.IsExist(err) {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
