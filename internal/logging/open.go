package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stderr is the LogFile value that selects standard error instead of a file.
const Stderr = "stderr"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds a Logger writing to the file at path, appending to it and
// creating its directory when missing. The returned Closer releases the file.
func Open(backend, level, path string) (Logger, io.Closer, error) {
	if path == "" || path == Stderr {
		l, err := New(backend, level, os.Stderr)
		return l, nopCloser{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	l, err := New(backend, level, f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return l, f, nil
}
