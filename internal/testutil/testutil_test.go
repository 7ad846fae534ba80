// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustChdir(t *testing.T) {
	dir := t.TempDir()
	restore := MustChdir(t, dir)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if actual, _ := filepath.EvalSymlinks(wd); actual != resolved {
		t.Errorf("working directory = %q, want %q", wd, dir)
	}

	restore()
	if after, _ := os.Getwd(); after == wd {
		t.Error("cleanup should restore the original directory")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "fixture.jar")
	WriteArchive(t, path, Dir("META-INF/"), File("META-INF/MANIFEST.MF", "Manifest-Version: 1.0\r\n"), File("a.txt", "a"))

	entries := ReadArchive(t, path)
	names := EntryNames(entries)
	want := []string{"META-INF/", "META-INF/MANIFEST.MF", "a.txt"}
	if len(names) != len(want) {
		t.Fatalf("EntryNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}

	if e, ok := FindEntry(entries, "a.txt"); !ok || string(e.Data) != "a" {
		t.Errorf("FindEntry(a.txt) = %+v, %v", e, ok)
	}
}

func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	path := MustWriteFile(t, filepath.Join(t.TempDir(), "a", "b", "c.txt"), "hello")
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}
}
