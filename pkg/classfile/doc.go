// SPDX-License-Identifier: MPL-2.0

// Package classfile rewrites the symbolic references of compiled JVM class
// files.
//
// Every symbolic name in a class file lives in a UTF-8 constant of the
// constant pool. Parse walks the constant pool, the fields, the methods and the
// well-known attributes, recording each reference to a UTF-8 constant together
// with the role it plays there: an internal class name, a type descriptor, a
// generic signature, a string value, or a name that is never rewritten (member
// and attribute names). Rewriter feeds each value through a Mapper according to
// its role and re-encodes the class.
//
// Constant indices are never renumbered, so instructions inside Code
// attributes stay valid without being decoded. A constant whose uses disagree
// after mapping is split by appending a new UTF-8 constant and repointing the
// references that need it.
//
// UTF-8 constants are handled as raw bytes (the JVM's modified UTF-8 is not
// decoded); mappers only ever add, remove or replace ASCII prefixes, so
// arbitrary content round-trips unchanged.
package classfile
