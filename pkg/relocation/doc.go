// SPDX-License-Identifier: MPL-2.0

// Package relocation rewrites symbolic names that cross archive boundaries.
//
// A Relocator answers two questions about a name ("does this rule apply to the
// dotted class name X", "does this rule apply to the slash path X") and produces
// the relocated form. A Remapper drives an ordered list of relocators: the first
// relocator that applies wins, and a name no relocator applies to is returned
// unchanged.
//
// Remapper.Map is used for archive entry paths and internal class names.
// Remapper.MapValue is used for arbitrary textual tokens found inside class
// files, which may be dotted class names, slash paths, or object/array type
// descriptors such as "[[Lcom/example/Foo;".
package relocation
