// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for shade.
//
// This package implements the Cobra command hierarchy for the shade CLI: the
// root command, `build` (merge and relocate archives), `config` (show, init,
// path, dump) and `inspect` (list the classes of an archive).
package cmd
