// SPDX-License-Identifier: MPL-2.0

// Package config handles shade configuration using Viper with CUE as the file format.
//
// Configuration is read from the file given with --config, or from shade.cue in
// the working directory; without either the defaults apply. Files are validated
// against the embedded schema (config_schema.cue) before being merged into
// Viper, and SHADE_* environment variables override scalar settings.
package config
