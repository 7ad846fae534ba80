// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

type (
	// Entry is one named entry of an input archive. Content is only read when
	// Open or ReadAll is called.
	Entry struct {
		// Name is the slash-separated entry path as stored in the archive.
		Name string
		// IsDir reports whether the entry is a directory marker.
		IsDir bool
		// Modified is the entry's modification time.
		Modified time.Time

		file *zip.File
	}

	// Reader iterates the entries of one input archive.
	Reader struct {
		path    string
		rc      *zip.ReadCloser
		entries []*Entry
	}
)

// Open opens the archive at path. A file that exists but is not a zip
// container yields an *OpenError wrapping ErrInvalidArchive.
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		if isFormatError(err) {
			return nil, &OpenError{Path: path, Err: fmt.Errorf("%w: %w", ErrInvalidArchive, err)}
		}
		return nil, &OpenError{Path: path, Err: err}
	}

	entries := make([]*Entry, 0, len(rc.File))
	for _, f := range rc.File {
		entries = append(entries, &Entry{
			Name:     f.Name,
			IsDir:    strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			Modified: f.Modified,
			file:     f,
		})
	}

	return &Reader{path: path, rc: rc, entries: entries}, nil
}

// Path returns the path the reader was opened from.
func (r *Reader) Path() string { return r.path }

// Entries returns the archive entries in archive-native order.
func (r *Reader) Entries() []*Entry { return r.entries }

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	err := r.rc.Close()
	r.rc = nil
	return err
}

// Open opens the entry's content for reading.
func (e *Entry) Open() (io.ReadCloser, error) {
	if e.file == nil {
		return nil, fmt.Errorf("entry %s has no content", e.Name)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", e.Name, err)
	}
	return rc, nil
}

// ReadAll reads the entry's full content.
func (e *Entry) ReadAll() (data []byte, err error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", e.Name, err)
	}
	return data, nil
}

func isFormatError(err error) bool {
	return errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrAlgorithm) ||
		errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
