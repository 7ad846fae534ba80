// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"strings"
	"testing"
)

func TestParseManifest(t *testing.T) {
	t.Parallel()

	in := "Manifest-Version: 1.0\r\n" +
		"Created-By: javac\r\n" +
		"Class-Path: lib/a.jar lib/b.jar lib/c.jar lib/d.jar lib/e.jar lib/f.jar l\r\n" +
		" ib/g.jar\r\n" +
		"\r\n" +
		"Name: com/x/\r\n" +
		"Sealed: true\r\n" +
		"\r\n"

	m, err := ParseManifest(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	if got, _ := m.Main.Get("class-path"); got != "lib/a.jar lib/b.jar lib/c.jar lib/d.jar lib/e.jar lib/f.jar lib/g.jar" {
		t.Errorf("Class-Path = %q", got)
	}
	if len(m.Entries) != 1 {
		t.Fatalf("Entries = %v, want one section", m.Entries)
	}
	if got, _ := m.Entries[0].Get("Name"); got != "com/x/" {
		t.Errorf("section Name = %q", got)
	}
}

func TestParseManifest_Errors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{" leading continuation\n", "no separator\n"} {
		if _, err := ParseManifest(strings.NewReader(in)); err == nil {
			t.Errorf("ParseManifest(%q) succeeded", in)
		}
	}
}

func TestManifestWriteTo_WrapsLongLines(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	m := &Manifest{Main: Section{{Name: "Created-By", Value: "shade"}, {Name: "Long", Value: long}}}

	var sb strings.Builder
	if _, err := m.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "Manifest-Version: 1.0\r\nCreated-By: shade\r\n") {
		t.Errorf("manifest does not start with the version: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Errorf("manifest does not end with a blank line: %q", out)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		if len(line) > 72 {
			t.Errorf("line exceeds 72 bytes: %q", line)
		}
	}

	back, err := ParseManifest(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	if got, _ := back.Main.Get("Long"); got != long {
		t.Errorf("wrapped value did not survive parsing: %q", got)
	}
}

func TestManifestTransformer(t *testing.T) {
	t.Parallel()

	tr := NewManifestTransformer("com.x.Main", Section{{Name: "Multi-Release", Value: "true"}})
	if !tr.CanTransformResource("meta-inf/manifest.mf") {
		t.Error("CanTransformResource() should be case-insensitive")
	}

	first := "Manifest-Version: 1.0\r\nMain-Class: com.y.Old\r\nCreated-By: a\r\n\r\n"
	second := "Manifest-Version: 1.0\r\nCreated-By: b\r\n\r\n"
	for _, in := range []string{first, second} {
		if err := tr.ProcessResource(ManifestPath, strings.NewReader(in), nil); err != nil {
			t.Fatalf("ProcessResource() error = %v", err)
		}
	}

	w := &memWriter{}
	if err := tr.ModifyOutput(w); err != nil {
		t.Fatalf("ModifyOutput() error = %v", err)
	}
	m, err := ParseManifest(strings.NewReader(w.data[ManifestPath]))
	if err != nil {
		t.Fatalf("ParseManifest(output) error = %v", err)
	}
	for name, want := range map[string]string{
		"Main-Class":    "com.x.Main",
		"Created-By":    "a",
		"Multi-Release": "true",
	} {
		if got, _ := m.Main.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestManifestTransformer_Synthesized(t *testing.T) {
	t.Parallel()

	empty := NewManifestTransformer("", nil)
	if empty.HasTransformedResource() {
		t.Error("HasTransformedResource() without input or attributes")
	}

	tr := NewManifestTransformer("com.x.Main", nil)
	if !tr.HasTransformedResource() {
		t.Fatal("HasTransformedResource() should be true with a main class")
	}
	w := &memWriter{}
	if err := tr.ModifyOutput(w); err != nil {
		t.Fatal(err)
	}
	if got := w.data[ManifestPath]; got != "Manifest-Version: 1.0\r\nMain-Class: com.x.Main\r\n\r\n" {
		t.Errorf("synthesized manifest = %q", got)
	}
}
