// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shade-cli/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "shade"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "shade"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides (SHADE_OUTPUT, SHADE_UI_VERBOSE, ...).
	EnvPrefix = "SHADE"
)

//go:embed config_schema.cue
var configSchema string

// ErrConfigExists is returned by Save when the target exists and overwrite is not requested.
var ErrConfigExists = errors.New("config file already exists")

// DefaultPath returns the location of the implicit config file inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
}

// loadWithOptions performs option-driven config loading. It returns the
// resolved config file path, or "" when only defaults and the environment
// were used.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("inputs", defaults.Inputs)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("relocations", defaults.Relocations)
	v.SetDefault("filters", defaults.Filters)
	v.SetDefault("transformers", defaults.Transformers)
	v.SetDefault("report", defaults.Report)
	v.SetDefault("reproducible", defaults.Reproducible)
	v.SetDefault("cache_size", defaults.CacheSize)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	// --config is used exclusively when set.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'shade config init' to create a template").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else if local := DefaultPath(opts.WorkDir); fileExists(local) {
		resolvedPath = local
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'shade config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Fix the fields named in the error").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// loadCUEIntoViper validates a CUE file against the #Config schema and merges
// its contents into Viper, preserving defaults and env overrides.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := decodeCUE(data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// Save writes cfg as CUE to path. An existing file is only replaced when
// overwrite is set.
func Save(cfg *Config, path string, overwrite bool) error {
	if !overwrite && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// shade configuration file\n")
	sb.WriteString("// Inputs are merged in order; earlier inputs win on duplicate entries.\n\n")

	sb.WriteString("inputs: [")
	for i, in := range cfg.Inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", in)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "output: %q\n", cfg.Output)

	sb.WriteString("\n// Move packages under a private prefix: {pattern: \"com.google\", shaded_pattern: \"myapp.shaded.google\"}\n")
	sb.WriteString("relocations: [\n")
	for _, r := range cfg.Relocations {
		fmt.Fprintf(&sb, "\t{pattern: %q", r.Pattern)
		if r.ShadedPattern != "" {
			fmt.Fprintf(&sb, ", shaded_pattern: %q", r.ShadedPattern)
		}
		writeList(&sb, "includes", r.Includes)
		writeList(&sb, "excludes", r.Excludes)
		if r.Raw {
			sb.WriteString(", raw: true")
		}
		sb.WriteString("},\n")
	}
	sb.WriteString("]\n")

	sb.WriteString("\n// Drop entries: {artifact: \"guava-*.jar\", excludes: [\"META-INF/*.SF\"]}\n")
	sb.WriteString("filters: [\n")
	for _, f := range cfg.Filters {
		sb.WriteString("\t{")
		artifact := f.Artifact
		if artifact == "" {
			artifact = "*"
		}
		fmt.Fprintf(&sb, "artifact: %q", artifact)
		writeList(&sb, "includes", f.Includes)
		writeList(&sb, "excludes", f.Excludes)
		sb.WriteString("},\n")
	}
	sb.WriteString("]\n")

	sb.WriteString("\n// Merge resources: manifest, appending, services or dont-include.\n")
	sb.WriteString("transformers: [\n")
	for _, t := range cfg.Transformers {
		fmt.Fprintf(&sb, "\t{kind: %q", t.Kind)
		if t.Resource != "" {
			fmt.Fprintf(&sb, ", resource: %q", t.Resource)
		}
		if t.MainClass != "" {
			fmt.Fprintf(&sb, ", main_class: %q", t.MainClass)
		}
		if len(t.ManifestEntries) > 0 {
			sb.WriteString(", manifest_entries: [")
			for i, e := range t.ManifestEntries {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "{name: %q, value: %q}", e.Name, e.Value)
			}
			sb.WriteString("]")
		}
		writeList(&sb, "suffixes", t.Suffixes)
		sb.WriteString("},\n")
	}
	sb.WriteString("]\n")

	if cfg.Report != "" {
		fmt.Fprintf(&sb, "\nreport: %q\n", cfg.Report)
	}
	fmt.Fprintf(&sb, "\nreproducible: %v\n", cfg.Reproducible)
	fmt.Fprintf(&sb, "cache_size: %d\n", cfg.CacheSize)
	if cfg.LogLevel != "" {
		fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, field string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, ", %s: [", field)
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", v)
	}
	sb.WriteString("]")
}
