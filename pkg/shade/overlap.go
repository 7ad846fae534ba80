// SPDX-License-Identifier: MPL-2.0

package shade

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/zeebo/blake3"
	"golang.org/x/exp/maps"
)

// MaxListedClasses is the number of class names rendered per overlap group.
const MaxListedClasses = 10

// OverlapAdvisory explains the first-wins policy once whenever overlaps exist.
var OverlapAdvisory = []string{
	"Some class files are present in two or more input archives.",
	"Only the copy from the first archive (in input order) is written to the output.",
	"This is usually harmless; when it is not, exclude the duplicate classes",
	"from the later archives with filters, using the overlap list above.",
}

type (
	// OverlapGroup is the set of classes contributed by exactly the same archives.
	OverlapGroup struct {
		// Archives are the contributing archives in input order.
		Archives []string `json:"archives" yaml:"archives" toml:"archives"`
		// Classes are the dotted class names, sorted.
		Classes []string `json:"classes" yaml:"classes" toml:"classes"`
		// Divergent counts the classes whose bytes differ between archives.
		Divergent int `json:"divergent" yaml:"divergent" toml:"divergent"`
	}

	// duplicateIndex maps original class entry names to the archives that
	// contained them, together with a digest of each copy.
	duplicateIndex struct {
		classes map[string]*classSources
	}

	classSources struct {
		archives []int
		digests  [][32]byte
	}
)

func newDuplicateIndex() *duplicateIndex {
	return &duplicateIndex{classes: make(map[string]*classSources)}
}

// record notes that archive (by input position) contained class with content data.
func (d *duplicateIndex) record(class string, archive int, data []byte) {
	src, ok := d.classes[class]
	if !ok {
		src = &classSources{}
		d.classes[class] = src
	}
	if slices.Contains(src.archives, archive) {
		return
	}
	src.archives = append(src.archives, archive)
	src.digests = append(src.digests, blake3.Sum256(data))
}

func (c *classSources) divergent() bool {
	for _, d := range c.digests[1:] {
		if d != c.digests[0] {
			return true
		}
	}
	return false
}

// overlaps groups every class seen in more than one archive by its exact set
// of archives. Groups are ordered by the input order of their archives.
func (d *duplicateIndex) overlaps(inputs []string) []OverlapGroup {
	type group struct {
		archives  []int
		classes   []string
		divergent int
	}
	groups := make(map[string]*group)

	for class, src := range d.classes {
		if len(src.archives) < 2 {
			continue
		}
		archives := slices.Clone(src.archives)
		slices.Sort(archives)
		key := fmt.Sprint(archives)

		g, ok := groups[key]
		if !ok {
			g = &group{archives: archives}
			groups[key] = g
		}
		g.classes = append(g.classes, displayName(class))
		if src.divergent() {
			g.divergent++
		}
	}

	keys := maps.Keys(groups)
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Compare(groups[a].archives, groups[b].archives)
	})

	out := make([]OverlapGroup, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		slices.Sort(g.classes)
		names := make([]string, len(g.archives))
		for i, a := range g.archives {
			names[i] = inputs[a]
		}
		out = append(out, OverlapGroup{Archives: names, Classes: g.classes, Divergent: g.divergent})
	}
	return out
}

// Lines renders the group as shown in the merge log: a header naming the
// archives, then up to MaxListedClasses classes and a remainder count.
func (g OverlapGroup) Lines() []string {
	bases := make([]string, len(g.Archives))
	for i, a := range g.Archives {
		bases[i] = filepath.Base(a)
	}

	header := fmt.Sprintf("%s define %d overlapping classes", strings.Join(bases, ", "), len(g.Classes))
	if g.Divergent > 0 {
		header += fmt.Sprintf(" (%d with differing content)", g.Divergent)
	}
	lines := []string{header + ":"}
	for _, c := range g.Classes[:min(len(g.Classes), MaxListedClasses)] {
		lines = append(lines, "  - "+c)
	}
	if rest := len(g.Classes) - MaxListedClasses; rest > 0 {
		lines = append(lines, fmt.Sprintf("  - %d more...", rest))
	}
	return lines
}

func reportOverlaps(logger *log.Logger, groups []OverlapGroup) {
	for _, g := range groups {
		for _, line := range g.Lines() {
			logger.Warn(line)
		}
	}
	if len(groups) == 0 {
		return
	}
	for _, line := range OverlapAdvisory {
		logger.Warn(line)
	}
}
