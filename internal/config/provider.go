// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// WorkDir is searched for shade.cue when ConfigFilePath is empty.
	// Defaults to the current directory.
	WorkDir string
}

// Provider loads configuration from explicit options.
type Provider interface {
	// Load returns the configuration and the path of the file it was read
	// from ("" when no file was found).
	Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	return loadWithOptions(ctx, opts)
}
