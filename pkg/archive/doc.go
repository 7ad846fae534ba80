// SPDX-License-Identifier: MPL-2.0

// Package archive reads and writes JAR-style zip archives as ordered sequences
// of named entries.
//
// Reader exposes the entries of one input archive in their native (central
// directory) order with lazily opened content. Writer builds a new archive
// append-only, refusing to add a name twice with a DuplicateEntryError so that
// callers can tell a collision apart from an I/O failure.
package archive
