// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"io"
	"slices"
	"strings"
	"testing"

	"shade-cli/pkg/relocation"
)

// memWriter records flushed entries in order.
type memWriter struct {
	names []string
	data  map[string]string
}

func (w *memWriter) WriteEntry(name string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if w.data == nil {
		w.data = make(map[string]string)
	}
	if _, ok := w.data[name]; ok {
		return nil
	}
	w.names = append(w.names, name)
	w.data[name] = string(b)
	return nil
}

func mustRelocator(t *testing.T, pattern, shaded string) relocation.Relocator {
	t.Helper()
	r, err := relocation.NewSimpleRelocator(relocation.SimpleRelocatorOptions{Pattern: pattern, ShadedPattern: shaded})
	if err != nil {
		t.Fatalf("NewSimpleRelocator() error = %v", err)
	}
	return r
}

func TestSplitManifest(t *testing.T) {
	t.Parallel()

	services := NewServicesTransformer()
	manifest := NewManifestTransformer("", nil)
	appending := NewAppendingTransformer("reference.conf")

	got, rest := SplitManifest([]Transformer{services, manifest, appending})
	if got != manifest {
		t.Errorf("SplitManifest() manifest = %v, want %v", got, manifest)
	}
	if len(rest) != 2 || rest[0] != services || rest[1] != appending {
		t.Errorf("SplitManifest() rest = %v", rest)
	}

	got, rest = SplitManifest([]Transformer{services})
	if got != nil || len(rest) != 1 {
		t.Errorf("SplitManifest() without manifest = %v, %v", got, rest)
	}
}

func TestAppendingTransformer(t *testing.T) {
	t.Parallel()

	tr := NewAppendingTransformer("/reference.conf")
	if !tr.CanTransformResource("REFERENCE.conf") {
		t.Error("CanTransformResource() should match case-insensitively")
	}
	if tr.CanTransformResource("application.conf") {
		t.Error("CanTransformResource() matched another resource")
	}
	if tr.HasTransformedResource() {
		t.Error("HasTransformedResource() before any input")
	}

	for _, content := range []string{"a = 1", "b = 2"} {
		if err := tr.ProcessResource("reference.conf", strings.NewReader(content), nil); err != nil {
			t.Fatalf("ProcessResource() error = %v", err)
		}
	}

	w := &memWriter{}
	if err := tr.ModifyOutput(w); err != nil {
		t.Fatalf("ModifyOutput() error = %v", err)
	}
	if got := w.data["reference.conf"]; got != "a = 1\nb = 2\n" {
		t.Errorf("merged content = %q", got)
	}
}

func TestServicesTransformer(t *testing.T) {
	t.Parallel()

	relocators := []relocation.Relocator{mustRelocator(t, "com.x", "shaded.x")}
	tr := NewServicesTransformer()

	tests := []struct {
		name string
		want bool
	}{
		{"META-INF/services/com.x.Codec", true},
		{"META-INF/services/", false},
		{"META-INF/services/nested/file", false},
		{"META-INF/MANIFEST.MF", false},
	}
	for _, tt := range tests {
		if got := tr.CanTransformResource(tt.name); got != tt.want {
			t.Errorf("CanTransformResource(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	inputs := []string{
		"# codecs\ncom.x.impl.Gzip\norg.y.Zstd\n",
		"org.y.Zstd\n\ncom.x.impl.Brotli # fast\ncom.x.impl.Gzip\n",
	}
	for _, in := range inputs {
		if err := tr.ProcessResource("META-INF/services/com.x.Codec", strings.NewReader(in), relocators); err != nil {
			t.Fatalf("ProcessResource() error = %v", err)
		}
	}

	want := []string{"shaded.x.impl.Gzip", "org.y.Zstd", "shaded.x.impl.Brotli"}
	if got := tr.Providers("shaded.x.Codec"); !slices.Equal(got, want) {
		t.Errorf("Providers() = %v, want %v", got, want)
	}

	w := &memWriter{}
	if err := tr.ModifyOutput(w); err != nil {
		t.Fatalf("ModifyOutput() error = %v", err)
	}
	if !slices.Equal(w.names, []string{"META-INF/services/shaded.x.Codec"}) {
		t.Errorf("written = %v", w.names)
	}
	if got := w.data["META-INF/services/shaded.x.Codec"]; got != "shaded.x.impl.Gzip\norg.y.Zstd\nshaded.x.impl.Brotli\n" {
		t.Errorf("service file = %q", got)
	}
}

func TestDontIncludeTransformer(t *testing.T) {
	t.Parallel()

	tr := NewDontIncludeTransformer(".SF", ".DSA")
	if !tr.CanTransformResource("META-INF/SIGNER.SF") || !tr.CanTransformResource("META-INF/SIGNER.DSA") {
		t.Error("CanTransformResource() should match configured suffixes")
	}
	if tr.CanTransformResource("META-INF/MANIFEST.MF") {
		t.Error("CanTransformResource() matched an unrelated resource")
	}
	if err := tr.ProcessResource("META-INF/SIGNER.SF", strings.NewReader("sig"), nil); err != nil {
		t.Fatal(err)
	}
	if tr.HasTransformedResource() {
		t.Error("HasTransformedResource() = true")
	}
}
