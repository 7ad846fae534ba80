// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"shade-cli/pkg/relocation"
)

const (
	// ManifestPath is the conventional location of an archive manifest.
	ManifestPath = "META-INF/MANIFEST.MF"

	manifestLineLimit = 72
)

type (
	// Attribute is one "Name: value" pair of a manifest section.
	Attribute struct {
		Name  string
		Value string
	}

	// Section is an ordered list of attributes.
	Section []Attribute

	// Manifest is a parsed archive manifest: the main section followed by the
	// per-entry sections in file order.
	Manifest struct {
		Main    Section
		Entries []Section
	}

	// ManifestTransformer keeps the first manifest found across all archives,
	// overriding its Main-Class and adding configured attributes.
	ManifestTransformer struct {
		mainClass  string
		attributes Section
		manifest   *Manifest
	}
)

// Get returns the value of the named attribute. Names are case-insensitive.
func (s Section) Get(name string) (string, bool) {
	for _, a := range s {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it.
func (s Section) Set(name, value string) Section {
	for i, a := range s {
		if strings.EqualFold(a.Name, name) {
			s[i].Value = value
			return s
		}
	}
	return append(s, Attribute{Name: name, Value: value})
}

// ParseManifest parses the manifest format: sections of "Name: value" lines
// separated by blank lines, where a line starting with a space continues the
// previous value.
func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	var current Section
	inMain := true

	flush := func() {
		if inMain {
			m.Main = current
			inMain = false
		} else if len(current) > 0 {
			m.Entries = append(m.Entries, current)
		}
		current = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		switch {
		case line == "":
			if inMain || len(current) > 0 {
				flush()
			}
		case strings.HasPrefix(line, " "):
			if len(current) == 0 {
				return nil, fmt.Errorf("manifest line %d: continuation without an attribute", lineNo)
			}
			current[len(current)-1].Value += line[1:]
		default:
			name, value, ok := strings.Cut(line, ":")
			if !ok || name == "" {
				return nil, fmt.Errorf("manifest line %d: expected \"Name: value\"", lineNo)
			}
			current = append(current, Attribute{Name: name, Value: strings.TrimPrefix(value, " ")})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if inMain || len(current) > 0 {
		flush()
	}
	return m, nil
}

// WriteTo encodes the manifest with CRLF line endings, wrapping lines at 72
// bytes. Manifest-Version is always written first.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	version, ok := m.Main.Get("Manifest-Version")
	if !ok {
		version = "1.0"
	}
	writeAttribute(&buf, Attribute{Name: "Manifest-Version", Value: version})
	for _, a := range m.Main {
		if !strings.EqualFold(a.Name, "Manifest-Version") {
			writeAttribute(&buf, a)
		}
	}
	buf.WriteString("\r\n")

	for _, s := range m.Entries {
		for _, a := range s {
			writeAttribute(&buf, a)
		}
		buf.WriteString("\r\n")
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func writeAttribute(buf *bytes.Buffer, a Attribute) {
	line := a.Name + ": " + a.Value
	limit := manifestLineLimit
	for len(line) > limit {
		buf.WriteString(line[:limit])
		buf.WriteString("\r\n ")
		line = line[limit:]
		limit = manifestLineLimit - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

// NewManifestTransformer creates a manifest transformer. An empty mainClass
// keeps the absorbed manifest's Main-Class; attributes are added or replaced
// in order.
func NewManifestTransformer(mainClass string, attributes Section) *ManifestTransformer {
	return &ManifestTransformer{mainClass: mainClass, attributes: slices.Clone(attributes)}
}

// AbsorbsManifests implements ManifestStyle.
func (t *ManifestTransformer) AbsorbsManifests() {}

// CanTransformResource matches META-INF/MANIFEST.MF case-insensitively.
func (t *ManifestTransformer) CanTransformResource(name string) bool {
	return strings.EqualFold(name, ManifestPath)
}

// ProcessResource keeps the first manifest and ignores the rest.
func (t *ManifestTransformer) ProcessResource(name string, r io.Reader, _ []relocation.Relocator) error {
	if t.manifest != nil {
		return nil
	}
	m, err := ParseManifest(r)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	t.manifest = m
	return nil
}

// HasTransformedResource reports whether a manifest was absorbed or one has to
// be synthesized from configured attributes.
func (t *ManifestTransformer) HasTransformedResource() bool {
	return t.manifest != nil || t.mainClass != "" || len(t.attributes) > 0
}

// ModifyOutput writes the merged manifest.
func (t *ManifestTransformer) ModifyOutput(w EntryWriter) error {
	m := t.manifest
	if m == nil {
		m = &Manifest{}
	}
	main := slices.Clone(m.Main)
	if t.mainClass != "" {
		main = main.Set("Main-Class", t.mainClass)
	}
	for _, a := range t.attributes {
		main = main.Set(a.Name, a.Value)
	}

	var buf bytes.Buffer
	if _, err := (&Manifest{Main: main, Entries: m.Entries}).WriteTo(&buf); err != nil {
		return err
	}
	return w.WriteEntry(ManifestPath, &buf)
}
