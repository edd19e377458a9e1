package format

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when path doesn't resolve to an existing file.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned when no codec recognizes the file.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCorrupt is returned when a codec recognizes the file, but cannot
	// read its metadata or samples.
	ErrCorrupt = errors.New("corrupt file")
)

// LoadError is returned by Open. Kind is one of ErrNotFound,
// ErrUnsupportedFormat or ErrCorrupt.
type LoadError struct {
	Kind error
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Kind)
}

// Is checks if kind or underlying error match provided sentinel error.
func (e *LoadError) Is(err error) bool {
	if e.Kind != nil && errors.Is(e.Kind, err) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, err) {
		return true
	}
	return false
}

// Unwrap returns the underlying codec or filesystem error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

func notFound(path string, err error) error {
	return &LoadError{Kind: ErrNotFound, Path: path, Err: err}
}

func unsupported(path string) error {
	return &LoadError{Kind: ErrUnsupportedFormat, Path: path}
}

func corrupt(path string, err error) error {
	return &LoadError{Kind: ErrCorrupt, Path: path, Err: err}
}
