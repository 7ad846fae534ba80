// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// ArchiveEntry is one entry of a test archive. Names ending in "/" are
// written as directory markers.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// File returns a file entry with string content.
func File(name, content string) ArchiveEntry {
	return ArchiveEntry{Name: name, Data: []byte(content)}
}

// Dir returns a directory entry.
func Dir(name string) ArchiveEntry {
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return ArchiveEntry{Name: name}
}

// WriteArchive writes a zip archive at path containing entries in order.
// The test fails immediately if writing fails.
func WriteArchive(t testing.TB, path string, entries ...ArchiveEntry) string {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("failed to add %s to %s: %v", e.Name, path, err)
		}
		if strings.HasSuffix(e.Name, "/") {
			continue
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("failed to write %s to %s: %v", e.Name, path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize archive %s: %v", path, err)
	}
	MustClose(t, f)
	return path
}

// ReadArchive returns the entries of the zip archive at path in stored order.
// The test fails immediately if reading fails.
func ReadArchive(t testing.TB, path string) []ArchiveEntry {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", path, err)
	}
	defer MustClose(t, zr)

	entries := make([]ArchiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s in %s: %v", f.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		MustClose(t, rc)
		if err != nil {
			t.Fatalf("failed to read %s in %s: %v", f.Name, path, err)
		}
		entries = append(entries, ArchiveEntry{Name: f.Name, Data: data})
	}
	return entries
}

// EntryNames returns the names of entries in order.
func EntryNames(entries []ArchiveEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// FindEntry returns the entry with the given name.
func FindEntry(entries []ArchiveEntry, name string) (ArchiveEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return ArchiveEntry{}, false
}
