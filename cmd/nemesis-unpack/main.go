// Command nemesis-unpack decompresses a single Nemesis stream. It mirrors
// the historical standalone decompress-only tool: no compression flags, no
// batch modes, just INPUT OUTPUT with "-" meaning stdin/stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/elliotnunn/nemesis/nemesis"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: nemesis-unpack INPUT OUTPUT")
		return 2
	}

	input, err := readInput(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "nemesis-unpack: reading %s: %v\n", args[0], err)
		return 1
	}

	var out nemesis.ByteSliceWriter
	if err := nemesis.Decompress(nemesis.NewByteSliceReader(input), &out); err != nil {
		fmt.Fprintf(os.Stderr, "nemesis-unpack: %v\n", err)
		return 1
	}

	if err := writeOutput(args[1], out.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "nemesis-unpack: writing %s: %v\n", args[1], err)
		return 1
	}
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
