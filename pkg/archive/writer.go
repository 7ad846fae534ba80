// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

type (
	// Writer builds an output archive. Entries are written in the order they are
	// added; a name can be added only once.
	Writer struct {
		path    string
		file    *os.File
		zw      *zip.Writer
		names   map[string]struct{}
		modTime time.Time
		closed  bool
	}

	// WriterOption configures a Writer.
	WriterOption func(*Writer)
)

// WithModTime stamps every written entry with t instead of the creation time,
// making output byte-for-byte reproducible.
func WithModTime(t time.Time) WriterOption {
	return func(w *Writer) { w.modTime = t }
}

// Create creates the archive at path, creating missing parent directories.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %s: %w", path, err)
	}

	w := &Writer{
		path:    path,
		file:    f,
		zw:      zip.NewWriter(f),
		names:   make(map[string]struct{}),
		modTime: time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the archive path.
func (w *Writer) Path() string { return w.path }

// Has reports whether name has already been written.
func (w *Writer) Has(name string) bool {
	_, ok := w.names[name]
	return ok
}

// Len returns the number of entries written so far.
func (w *Writer) Len() int { return len(w.names) }

// AddDirectory writes a directory marker. A trailing "/" is added when missing.
func (w *Writer) AddDirectory(name string) error {
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	if err := w.reserve(name); err != nil {
		return err
	}

	hdr := &zip.FileHeader{Name: name, Method: zip.Store, Modified: w.modTime}
	hdr.SetMode(os.ModeDir | 0o755)
	if _, err := w.zw.CreateHeader(hdr); err != nil {
		return fmt.Errorf("failed to write directory entry %s: %w", name, err)
	}
	return nil
}

// AddEntry writes a file entry with the content of r.
func (w *Writer) AddEntry(name string, r io.Reader) error {
	if err := w.reserve(name); err != nil {
		return err
	}

	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: w.modTime}
	hdr.SetMode(0o644)
	dst, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", name, err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}
	return nil
}

// AddBytes writes a file entry with content data.
func (w *Writer) AddBytes(name string, data []byte) error {
	return w.AddEntry(name, bytes.NewReader(data))
}

// Close finishes the central directory and closes the file. It is safe to
// call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	zipErr := w.zw.Close()
	fileErr := w.file.Close()
	if zipErr != nil {
		return fmt.Errorf("failed to finalize archive %s: %w", w.path, zipErr)
	}
	if fileErr != nil {
		return fmt.Errorf("failed to close archive %s: %w", w.path, fileErr)
	}
	return nil
}

// Abort closes the writer and removes the partially written file.
func (w *Writer) Abort() error {
	_ = w.Close() // The file is removed regardless of finalization errors.
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove incomplete archive %s: %w", w.path, err)
	}
	return nil
}

func (w *Writer) reserve(name string) error {
	if w.closed {
		return ErrWriterClosed
	}
	if _, ok := w.names[name]; ok {
		return &DuplicateEntryError{Name: name}
	}
	w.names[name] = struct{}{}
	return nil
}
