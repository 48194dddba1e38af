package dump

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type readCloser struct {
	io.Reader
	io.Closer
}

// Open opens the dump file for a tolerant sequential read: byte sequences
// that are not valid UTF-8 are replaced rather than aborting the scan. A
// missing or unreadable file is the only fatal condition in the pipeline.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file %q: %w", path, err)
	}
	decoder := unicode.UTF8.NewDecoder()
	return &readCloser{
		Reader: transform.NewReader(f, decoder),
		Closer: f,
	}, nil
}
