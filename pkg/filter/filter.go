// SPDX-License-Identifier: MPL-2.0

package filter

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/charmbracelet/log"
)

// MatchAll is the artifact pattern that applies a filter to every archive.
const MatchAll = "*"

// ErrInvalidFilter is the sentinel error wrapped by InvalidFilterError.
var ErrInvalidFilter = errors.New("invalid filter")

type (
	// Filter excludes entries from specific archives.
	Filter interface {
		// CanFilter reports whether the filter applies to the archive at archivePath.
		CanFilter(archivePath string) bool
		// IsFiltered reports whether the entry with the given original name is excluded.
		IsFiltered(name string) bool
		// Finished is called once after the merge completes or fails.
		Finished()
	}

	// SimpleFilterOptions configures a SimpleFilter.
	SimpleFilterOptions struct {
		// Artifact is a glob matched against the archive's base name. Empty or
		// "*" applies the filter to every archive.
		Artifact string
		// Includes, when non-empty, keeps only entries matching one of them.
		Includes []string
		// Excludes drops entries matching any of them.
		Excludes []string
		// Logger receives the unused-pattern warnings. Defaults to a discarding logger.
		Logger *log.Logger
	}

	// SimpleFilter filters entries by include and exclude globs. A pattern ending
	// in "/" matches the whole directory subtree.
	SimpleFilter struct {
		artifact string
		includes []pattern
		excludes []pattern
		logger   *log.Logger
	}

	pattern struct {
		source string
		glob   string
		used   bool
	}

	// InvalidFilterError is returned when a filter pattern is not a valid glob.
	InvalidFilterError struct {
		Pattern string
		Err     error
	}
)

// Error implements the error interface for InvalidFilterError.
func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns ErrInvalidFilter for errors.Is() compatibility.
func (e *InvalidFilterError) Unwrap() error { return ErrInvalidFilter }

// NewSimpleFilter validates opts and builds a SimpleFilter.
func NewSimpleFilter(opts SimpleFilterOptions) (*SimpleFilter, error) {
	artifact := opts.Artifact
	if artifact == "" {
		artifact = MatchAll
	}
	if _, err := doublestar.Match(artifact, artifact); err != nil {
		return nil, &InvalidFilterError{Pattern: artifact, Err: err}
	}

	includes, err := compile(opts.Includes)
	if err != nil {
		return nil, err
	}
	excludes, err := compile(opts.Excludes)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SimpleFilter{artifact: artifact, includes: includes, excludes: excludes, logger: logger}, nil
}

func compile(sources []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(sources))
	for _, src := range sources {
		glob := strings.TrimPrefix(src, "/")
		if strings.HasSuffix(glob, "/") {
			glob += "**"
		}
		if _, err := doublestar.Match(glob, glob); err != nil {
			return nil, &InvalidFilterError{Pattern: src, Err: err}
		}
		patterns = append(patterns, pattern{source: src, glob: glob})
	}
	return patterns, nil
}

// CanFilter matches the archive base name against the artifact glob.
func (f *SimpleFilter) CanFilter(archivePath string) bool {
	if f.artifact == MatchAll {
		return true
	}
	ok, _ := doublestar.Match(f.artifact, path.Base(strings.ReplaceAll(archivePath, "\\", "/")))
	return ok
}

// IsFiltered reports whether name is excluded. Every matching pattern is
// marked used, so Finished only reports patterns that never matched.
func (f *SimpleFilter) IsFiltered(name string) bool {
	if len(f.includes) > 0 && !matchAny(f.includes, name) {
		return true
	}
	return matchAny(f.excludes, name)
}

// Finished warns about include and exclude patterns that never matched.
func (f *SimpleFilter) Finished() {
	for _, kind := range []struct {
		name     string
		patterns []pattern
	}{
		{"include", f.includes},
		{"exclude", f.excludes},
	} {
		for _, p := range kind.patterns {
			if !p.used {
				f.logger.Warn("filter pattern matched no entries", "artifact", f.artifact, "kind", kind.name, "pattern", p.source)
			}
		}
	}
}

// Unused returns the include and exclude patterns that have not matched yet.
func (f *SimpleFilter) Unused() []string {
	var out []string
	for _, list := range [][]pattern{f.includes, f.excludes} {
		for _, p := range list {
			if !p.used {
				out = append(out, p.source)
			}
		}
	}
	return out
}

func matchAny(patterns []pattern, name string) bool {
	matched := false
	for i := range patterns {
		if ok, _ := doublestar.Match(patterns[i].glob, name); ok {
			patterns[i].used = true
			matched = true
		}
	}
	return matched
}
