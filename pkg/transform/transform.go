// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"io"

	"shade-cli/pkg/relocation"
)

type (
	// Transformer accumulates resources across archives and writes a merged
	// result.
	Transformer interface {
		// CanTransformResource reports whether the transformer absorbs the named entry.
		CanTransformResource(name string) bool
		// ProcessResource consumes the entry's content. Relocators are the ordered
		// relocation rules of the merge, for transformers that rewrite class names
		// found in resource content.
		ProcessResource(name string, r io.Reader, relocators []relocation.Relocator) error
		// HasTransformedResource reports whether ModifyOutput would write anything.
		HasTransformedResource() bool
		// ModifyOutput writes the accumulated result.
		ModifyOutput(w EntryWriter) error
	}

	// ManifestStyle is a transformer that absorbs archive manifests. The
	// orchestrator hands it at most one entry per archive, in a pass that
	// runs before any other entry is written, so its output is the first
	// file of the merged archive.
	ManifestStyle interface {
		Transformer
		// AbsorbsManifests marks the transformer as manifest-style.
		AbsorbsManifests()
	}

	// EntryWriter is the output handed to transformers at flush time. It creates
	// parent directories as needed; writing a name that already exists in the
	// output is silently discarded.
	EntryWriter interface {
		WriteEntry(name string, r io.Reader) error
	}
)

// SplitManifest removes the first ManifestStyle transformer from ts.
func SplitManifest(ts []Transformer) (ManifestStyle, []Transformer) {
	for i, t := range ts {
		if m, ok := t.(ManifestStyle); ok {
			rest := make([]Transformer, 0, len(ts)-1)
			rest = append(rest, ts[:i]...)
			rest = append(rest, ts[i+1:]...)
			return m, rest
		}
	}
	return nil, ts
}
