// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArchive is returned when a file is not a readable zip container.
	ErrInvalidArchive = errors.New("invalid archive")
	// ErrDuplicateEntry is the sentinel error wrapped by DuplicateEntryError.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrWriterClosed is returned when adding entries after Close.
	ErrWriterClosed = errors.New("archive writer closed")
)

type (
	// OpenError reports a failure to open an input archive. It always carries
	// the archive path so callers never surface a bare low-level message.
	OpenError struct {
		Path string
		Err  error
	}

	// DuplicateEntryError is returned by Writer when a name is already present.
	// It wraps ErrDuplicateEntry for errors.Is() compatibility.
	DuplicateEntryError struct {
		Name string
	}
)

// Error implements the error interface for OpenError.
func (e *OpenError) Error() string {
	return fmt.Sprintf("error opening archive %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OpenError) Unwrap() error { return e.Err }

// Error implements the error interface for DuplicateEntryError.
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate entry: %s", e.Name)
}

// Unwrap returns ErrDuplicateEntry for errors.Is() compatibility.
func (e *DuplicateEntryError) Unwrap() error { return ErrDuplicateEntry }
