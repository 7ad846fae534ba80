// SPDX-License-Identifier: MPL-2.0

// Package shade merges input archives into one output archive, relocating
// packages and resolving entry collisions.
//
// A merge is a single sequential pass. When a manifest transformer is
// configured, every archive is first scanned for its manifest so the merged
// manifest can be written before anything else. The main pass then consumes
// the archives in input order: entries are filtered, renamed through the
// relocation rules, written under the first archive that provides them, and
// offered to the resource transformers. Parent directories are synthesized on
// demand rather than copied.
//
// Class entries that appear in more than one archive are collected as
// overlap groups: sets of classes contributed by exactly the same archives.
// Only the first copy of such a class reaches the output; the groups are
// reported so that the silent first-wins choice can be reviewed.
package shade
