// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* file helpers it builds fixtures for the merge engine:
// zip archives (WriteArchive, ReadArchive) and minimal JVM class files
// (NewClass).
package testutil
