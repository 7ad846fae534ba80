// SPDX-License-Identifier: MPL-2.0

package shade

import "strings"

// NameSet holds the final names committed to the output archive. Directory
// names carry a trailing "/", so they never collide with file names.
type NameSet struct {
	names map[string]struct{}
}

// NewNameSet returns an empty set.
func NewNameSet() *NameSet {
	return &NameSet{names: make(map[string]struct{})}
}

// Has reports whether name was committed.
func (s *NameSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Add marks name committed.
func (s *NameSet) Add(name string) {
	s.names[name] = struct{}{}
}

// parentDir returns the directory containing name with a trailing "/", or ""
// for top-level names. name may itself be a directory.
func parentDir(name string) string {
	name = strings.TrimSuffix(name, "/")
	i := strings.LastIndexByte(name, '/')
	if i < 0 {
		return ""
	}
	return name[:i+1]
}

// displayName turns a class entry name into a dotted class name.
func displayName(entry string) string {
	return strings.ReplaceAll(strings.TrimSuffix(entry, classSuffix), "/", ".")
}
