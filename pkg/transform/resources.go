// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"shade-cli/pkg/relocation"
)

// ServicesPrefix is the directory holding service provider registrations.
const ServicesPrefix = "META-INF/services/"

type (
	// AppendingTransformer concatenates every copy of one resource, each
	// followed by a newline.
	AppendingTransformer struct {
		resource string
		data     bytes.Buffer
		seen     bool
	}

	// ServicesTransformer merges service provider registrations. Provider
	// lines are de-duplicated in first-seen order, and both provider class
	// names and the service file name are relocated.
	ServicesTransformer struct {
		order    []string
		services map[string]*serviceFile
	}

	serviceFile struct {
		lines []string
		seen  map[string]struct{}
	}

	// DontIncludeTransformer drops resources ending in one of its suffixes.
	DontIncludeTransformer struct {
		suffixes []string
	}
)

// NewAppendingTransformer creates a transformer for the named resource.
func NewAppendingTransformer(resource string) *AppendingTransformer {
	return &AppendingTransformer{resource: strings.TrimPrefix(resource, "/")}
}

// CanTransformResource matches the configured resource case-insensitively.
func (t *AppendingTransformer) CanTransformResource(name string) bool {
	return strings.EqualFold(name, t.resource)
}

// ProcessResource appends the content and a newline.
func (t *AppendingTransformer) ProcessResource(name string, r io.Reader, _ []relocation.Relocator) error {
	if _, err := io.Copy(&t.data, r); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	t.data.WriteByte('\n')
	t.seen = true
	return nil
}

// HasTransformedResource reports whether any copy was absorbed.
func (t *AppendingTransformer) HasTransformedResource() bool { return t.seen }

// ModifyOutput writes the concatenated resource.
func (t *AppendingTransformer) ModifyOutput(w EntryWriter) error {
	return w.WriteEntry(t.resource, bytes.NewReader(t.data.Bytes()))
}

// NewServicesTransformer creates an empty services transformer.
func NewServicesTransformer() *ServicesTransformer {
	return &ServicesTransformer{services: make(map[string]*serviceFile)}
}

// CanTransformResource matches files directly under META-INF/services/.
func (t *ServicesTransformer) CanTransformResource(name string) bool {
	rest, ok := strings.CutPrefix(name, ServicesPrefix)
	return ok && rest != "" && !strings.Contains(rest, "/")
}

// ProcessResource records the provider lines of one registration file.
// Comments and blank lines are dropped.
func (t *ServicesTransformer) ProcessResource(name string, r io.Reader, relocators []relocation.Relocator) error {
	service := relocateClass(strings.TrimPrefix(name, ServicesPrefix), relocators)
	file, ok := t.services[service]
	if !ok {
		file = &serviceFile{seen: make(map[string]struct{})}
		t.services[service] = file
		t.order = append(t.order, service)
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = relocateClass(line, relocators)
		if _, dup := file.seen[line]; dup {
			continue
		}
		file.seen[line] = struct{}{}
		file.lines = append(file.lines, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

// HasTransformedResource reports whether any registration was absorbed.
func (t *ServicesTransformer) HasTransformedResource() bool { return len(t.order) > 0 }

// ModifyOutput writes one merged file per service, in first-seen order.
func (t *ServicesTransformer) ModifyOutput(w EntryWriter) error {
	for _, service := range t.order {
		var buf bytes.Buffer
		for _, line := range t.services[service].lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		if err := w.WriteEntry(ServicesPrefix+service, &buf); err != nil {
			return err
		}
	}
	return nil
}

// Providers returns the merged provider lines of a service, after relocation.
func (t *ServicesTransformer) Providers(service string) []string {
	if f, ok := t.services[service]; ok {
		return f.lines
	}
	return nil
}

func relocateClass(className string, relocators []relocation.Relocator) string {
	for _, r := range relocators {
		if r.CanRelocateClass(className) {
			return r.RelocateClass(className)
		}
	}
	return className
}

// NewDontIncludeTransformer creates a transformer dropping the given suffixes.
func NewDontIncludeTransformer(suffixes ...string) *DontIncludeTransformer {
	return &DontIncludeTransformer{suffixes: suffixes}
}

// CanTransformResource matches names ending in a configured suffix.
func (t *DontIncludeTransformer) CanTransformResource(name string) bool {
	for _, s := range t.suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ProcessResource discards the content.
func (t *DontIncludeTransformer) ProcessResource(string, io.Reader, []relocation.Relocator) error {
	return nil
}

// HasTransformedResource is always false.
func (t *DontIncludeTransformer) HasTransformedResource() bool { return false }

// ModifyOutput writes nothing.
func (t *DontIncludeTransformer) ModifyOutput(EntryWriter) error { return nil }
