// Package mmapio reads whole files via mmap where the platform supports it,
// for -glob and -bundle batch jobs that may touch many tile files without
// wanting a read(2) copy for each one. Platforms without an mmap
// implementation here fall back to a plain os.ReadFile.
package mmapio

import "os"

// ReadFile returns the full contents of name, memory-mapping the file when
// the platform supports it (see readFile in the build-tagged files) and
// falling back to os.ReadFile otherwise.
func ReadFile(name string) ([]byte, error) {
	return readFile(name)
}

func readFileFallback(name string) ([]byte, error) {
	return os.ReadFile(name)
}
