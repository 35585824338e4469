//go:build !unix

package mmapio

func readFile(name string) ([]byte, error) {
	return readFileFallback(name)
}
