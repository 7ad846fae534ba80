// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"shade-cli/pkg/shade"
)

func sampleResult() *shade.Result {
	return &shade.Result{
		Output:      "out.jar",
		Archives:    2,
		Entries:     10,
		Directories: 4,
		Relocated:   3,
		Duplicates:  1,
		Overlaps: []shade.OverlapGroup{{
			Archives:  []string{"a.jar", "b.jar"},
			Classes:   []string{"com/x/A.class"},
			Divergent: 1,
		}},
	}
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"report.toml", FormatTOML, false},
		{"dir/report.YAML", FormatYAML, false},
		{"report.yml", FormatYAML, false},
		{"report.json", FormatJSON, false},
		{"report.txt", "", true},
		{"report", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFor(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("FormatFor(%q) error = %v, want ErrUnknownFormat", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatFor(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		decode func([]byte, *Document) error
	}{
		{"report.toml", func(b []byte, d *Document) error { return toml.Unmarshal(b, d) }},
		{"report.yaml", func(b []byte, d *Document) error { return yaml.Unmarshal(b, d) }},
		{"report.json", func(b []byte, d *Document) error { return json.Unmarshal(b, d) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", tt.name)
			if err := Write(path, sampleResult()); err != nil {
				t.Fatalf("Write() returned error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var doc Document
			if err := tt.decode(data, &doc); err != nil {
				t.Fatalf("decoding %s failed: %v\n%s", tt.name, err, data)
			}

			if doc.Version != documentVersion || doc.Result == nil {
				t.Fatalf("decoded document = %+v", doc)
			}
			if doc.Result.Entries != 10 || doc.Result.Relocated != 3 {
				t.Errorf("decoded counters = %+v", doc.Result)
			}
			if len(doc.Result.Overlaps) != 1 || doc.Result.Overlaps[0].Divergent != 1 ||
				doc.Result.Overlaps[0].Archives[1] != "b.jar" {
				t.Errorf("decoded overlaps = %+v", doc.Result.Overlaps)
			}
		})
	}
}

func TestWrite_UnknownFormatLeavesNoFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.csv")
	if err := Write(path, sampleResult()); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Write() error = %v, want ErrUnknownFormat", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be created for an unknown format")
	}
}
