// SPDX-License-Identifier: MPL-2.0

package relocation

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of MapValue results a Remapper memoizes.
const DefaultCacheSize = 4096

// Remapper maps names through an ordered list of relocators.
// It is not safe for concurrent use when caching is enabled.
type Remapper struct {
	relocators []Relocator
	values     *lru.Cache[string, string]
}

// NewRemapper creates a Remapper over relocators, tried in order.
// A cacheSize <= 0 disables memoization of MapValue.
func NewRemapper(relocators []Relocator, cacheSize int) *Remapper {
	r := &Remapper{relocators: relocators}
	if cacheSize > 0 && len(relocators) > 0 {
		// lru.New only fails for non-positive sizes.
		r.values, _ = lru.New[string, string](cacheSize)
	}
	return r
}

// HasRelocators reports whether any relocator is configured. Without
// relocators every name maps to itself and class bytes need no rewriting.
func (r *Remapper) HasRelocators() bool {
	return len(r.relocators) > 0
}

// Map maps an archive entry path or internal class name. Only path
// applicability is consulted.
func (r *Remapper) Map(name string) string {
	d := ParseDescriptor(name)
	if d.Kind == KindPrimitive {
		return name
	}
	for _, rel := range r.relocators {
		if rel.CanRelocatePath(d.Name) {
			d.Name = rel.RelocatePath(d.Name)
			return d.String()
		}
	}
	return name
}

// MapValue maps a textual token that may be a dotted class name, a slash path
// or a type descriptor. For each relocator class applicability is checked
// before path applicability.
func (r *Remapper) MapValue(value string) string {
	if r.values != nil {
		if mapped, ok := r.values.Get(value); ok {
			return mapped
		}
	}

	mapped := r.mapValue(value)
	if r.values != nil {
		r.values.Add(value, mapped)
	}
	return mapped
}

func (r *Remapper) mapValue(value string) string {
	d := ParseDescriptor(value)
	if d.Kind == KindPrimitive {
		return value
	}
	for _, rel := range r.relocators {
		if rel.CanRelocateClass(d.Name) {
			d.Name = rel.RelocateClass(d.Name)
			return d.String()
		}
		if rel.CanRelocatePath(d.Name) {
			d.Name = rel.RelocatePath(d.Name)
			return d.String()
		}
	}
	return value
}
