// SPDX-License-Identifier: MPL-2.0

// Package report exports a merge Result for tooling: TOML, YAML or JSON,
// chosen by the file extension.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"shade-cli/pkg/shade"
)

const (
	// FormatTOML writes the report with go-toml.
	FormatTOML Format = "toml"
	// FormatYAML writes the report with yaml.v3.
	FormatYAML Format = "yaml"
	// FormatJSON writes indented JSON.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for a report path whose extension has no encoder.
var ErrUnknownFormat = errors.New("unknown report format")

type (
	// Format is a report encoding.
	Format string

	// Document is the exported report. It wraps the Result so the file can
	// grow other top-level sections without breaking readers.
	Document struct {
		Version int           `json:"version" yaml:"version" toml:"version"`
		Result  *shade.Result `json:"result" yaml:"result" toml:"result"`
	}
)

// documentVersion is bumped when Document changes incompatibly.
const documentVersion = 1

// FormatFor returns the encoding implied by path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (use .toml, .yaml, .yml or .json)", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Encode writes res to w in format f.
func Encode(w io.Writer, f Format, res *shade.Result) error {
	doc := Document{Version: documentVersion, Result: res}

	switch f {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Write encodes res into the file at path, creating parent directories.
// The file is only replaced once encoding succeeded.
func Write(path string, res *shade.Result) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, f, res); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
