// SPDX-License-Identifier: MPL-2.0

package relocation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// DefaultShadedPrefix is prepended to a pattern when no shaded pattern is configured.
const DefaultShadedPrefix = "hidden."

const classSuffix = ".class"

// ErrInvalidRelocator is the sentinel error wrapped by InvalidRelocatorError.
var ErrInvalidRelocator = errors.New("invalid relocator")

type (
	// Relocator is one relocation rule. Implementations must be safe to query
	// repeatedly; the Remapper may call them hundreds of thousands of times.
	Relocator interface {
		// CanRelocatePath reports whether the rule applies to a slash-separated path
		// or internal class name (a trailing ".class" is ignored).
		CanRelocatePath(path string) bool
		// RelocatePath returns the relocated form of path.
		RelocatePath(path string) string
		// CanRelocateClass reports whether the rule applies to a dotted class name.
		CanRelocateClass(className string) bool
		// RelocateClass returns the relocated form of a dotted class name.
		RelocateClass(className string) string
	}

	// SimpleRelocatorOptions configures a SimpleRelocator.
	SimpleRelocatorOptions struct {
		// Pattern is the dotted package prefix to relocate (e.g. "com.example").
		// In raw mode it is a regular expression applied to paths.
		Pattern string
		// ShadedPattern is the replacement prefix. Defaults to "hidden." + Pattern.
		ShadedPattern string
		// Includes restricts relocation to matching names. Patterns are dotted or
		// slash globs ("com.example.api.*", "com/example/**").
		Includes []string
		// Excludes prevents relocation of matching names.
		Excludes []string
		// Raw switches to regular-expression path replacement. Raw relocators never
		// apply to dotted class names.
		Raw bool
	}

	// SimpleRelocator relocates a package prefix, optionally restricted by
	// include and exclude globs.
	SimpleRelocator struct {
		pattern           string
		pathPattern       string
		shadedPattern     string
		shadedPathPattern string
		includes          []string
		excludes          []string
		raw               *regexp.Regexp
	}

	// InvalidRelocatorError is returned when SimpleRelocatorOptions cannot produce
	// a usable relocator. It wraps ErrInvalidRelocator for errors.Is() compatibility.
	InvalidRelocatorError struct {
		Pattern string
		Reason  string
	}
)

// Error implements the error interface for InvalidRelocatorError.
func (e *InvalidRelocatorError) Error() string {
	return fmt.Sprintf("invalid relocator %q: %s", e.Pattern, e.Reason)
}

// Unwrap returns ErrInvalidRelocator for errors.Is() compatibility.
func (e *InvalidRelocatorError) Unwrap() error { return ErrInvalidRelocator }

// NewSimpleRelocator builds a SimpleRelocator from opts.
func NewSimpleRelocator(opts SimpleRelocatorOptions) (*SimpleRelocator, error) {
	pattern := strings.TrimSpace(opts.Pattern)
	if pattern == "" {
		return nil, &InvalidRelocatorError{Pattern: opts.Pattern, Reason: "pattern must not be empty"}
	}

	r := &SimpleRelocator{}

	if opts.Raw {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &InvalidRelocatorError{Pattern: pattern, Reason: err.Error()}
		}
		r.raw = re
		r.pattern = pattern
		r.pathPattern = pattern
		r.shadedPattern = opts.ShadedPattern
		r.shadedPathPattern = opts.ShadedPattern
		return r, nil
	}

	r.pattern = strings.ReplaceAll(pattern, "/", ".")
	r.pathPattern = strings.ReplaceAll(pattern, ".", "/")

	shaded := strings.TrimSpace(opts.ShadedPattern)
	if shaded == "" {
		shaded = DefaultShadedPrefix + r.pattern
	}
	r.shadedPattern = strings.ReplaceAll(shaded, "/", ".")
	r.shadedPathPattern = strings.ReplaceAll(shaded, ".", "/")

	var err error
	if r.includes, err = normalizeGlobs(opts.Includes); err != nil {
		return nil, &InvalidRelocatorError{Pattern: pattern, Reason: err.Error()}
	}
	if r.excludes, err = normalizeGlobs(opts.Excludes); err != nil {
		return nil, &InvalidRelocatorError{Pattern: pattern, Reason: err.Error()}
	}

	return r, nil
}

// Pattern returns the dotted source pattern.
func (r *SimpleRelocator) Pattern() string { return r.pattern }

// ShadedPattern returns the dotted replacement pattern.
func (r *SimpleRelocator) ShadedPattern() string { return r.shadedPattern }

// CanRelocatePath implements Relocator.
func (r *SimpleRelocator) CanRelocatePath(path string) bool {
	if r.raw != nil {
		return r.raw.MatchString(path)
	}

	path = strings.TrimSuffix(path, classSuffix)
	if !r.isIncluded(path) || r.isExcluded(path) {
		return false
	}

	return strings.HasPrefix(path, r.pathPattern) || strings.HasPrefix(path, "/"+r.pathPattern)
}

// RelocatePath implements Relocator. Only the first occurrence of the path
// prefix is replaced; raw relocators replace every match.
func (r *SimpleRelocator) RelocatePath(path string) string {
	if r.raw != nil {
		return r.raw.ReplaceAllString(path, r.shadedPathPattern)
	}
	return strings.Replace(path, r.pathPattern, r.shadedPathPattern, 1)
}

// CanRelocateClass implements Relocator.
func (r *SimpleRelocator) CanRelocateClass(className string) bool {
	if r.raw != nil || strings.Contains(className, "/") {
		return false
	}
	return r.CanRelocatePath(strings.ReplaceAll(className, ".", "/"))
}

// RelocateClass implements Relocator.
func (r *SimpleRelocator) RelocateClass(className string) string {
	if r.raw != nil {
		return className
	}
	return strings.Replace(className, r.pattern, r.shadedPattern, 1)
}

func (r *SimpleRelocator) isIncluded(path string) bool {
	if len(r.includes) == 0 {
		return true
	}
	return matchAny(r.includes, path)
}

func (r *SimpleRelocator) isExcluded(path string) bool {
	return len(r.excludes) > 0 && matchAny(r.excludes, path)
}

// normalizeGlobs converts dotted class globs to slash form so that both
// "com.example.*" and "com/example/*" select the same paths.
func normalizeGlobs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.TrimSuffix(p, classSuffix)
		p = strings.ReplaceAll(p, ".", "/")
		if _, err := doublestar.Match(p, p); err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", p, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
