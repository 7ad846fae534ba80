// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// TransformerManifest merges META-INF/MANIFEST.MF and sets Main-Class.
	TransformerManifest TransformerKind = "manifest"
	// TransformerAppending concatenates every copy of one resource.
	TransformerAppending TransformerKind = "appending"
	// TransformerServices merges META-INF/services provider files.
	TransformerServices TransformerKind = "services"
	// TransformerDontInclude drops resources by suffix.
	TransformerDontInclude TransformerKind = "dont-include"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDebug enables per-archive progress output.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn hides the summary and keeps warnings.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only prints failures.
	LogLevelError LogLevel = "error"

	// DefaultCacheSize is the default capacity of the relocation memoization cache.
	DefaultCacheSize = 4096
)

var (
	// ErrInvalidTransformerKind is returned when a TransformerKind value is not recognized.
	ErrInvalidTransformerKind = errors.New("invalid transformer kind")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidRelocation is the sentinel error wrapped by InvalidRelocationError.
	ErrInvalidRelocation = errors.New("invalid relocation")
	// ErrInvalidTransformer is the sentinel error wrapped by InvalidTransformerError.
	ErrInvalidTransformer = errors.New("invalid transformer")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// TransformerKind selects one of the built-in resource transformers.
	TransformerKind string

	// InvalidTransformerKindError is returned when a TransformerKind value is not recognized.
	// It wraps ErrInvalidTransformerKind for errors.Is() compatibility.
	InvalidTransformerKindError struct {
		Value TransformerKind
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level written by the CLI logger.
	// The zero value means "derive from ui.verbose".
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidRelocationError is returned when a RelocationConfig has invalid fields.
	InvalidRelocationError struct {
		Index  int
		Reason string
	}

	// InvalidTransformerError is returned when a TransformerConfig is missing a
	// field its kind requires. It collects field-level errors.
	InvalidTransformerError struct {
		Index       int
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// RelocationConfig describes one package relocation.
	RelocationConfig struct {
		// Pattern is the dotted package prefix, or a regular expression when Raw is set.
		Pattern string `json:"pattern" mapstructure:"pattern"`
		// ShadedPattern is the replacement prefix (default "hidden." + Pattern).
		ShadedPattern string `json:"shaded_pattern,omitempty" mapstructure:"shaded_pattern"`
		Includes      []string `json:"includes,omitempty" mapstructure:"includes"`
		Excludes      []string `json:"excludes,omitempty" mapstructure:"excludes"`
		Raw           bool     `json:"raw,omitempty" mapstructure:"raw"`
	}

	// FilterConfig selects entries of the archives whose base name matches Artifact.
	FilterConfig struct {
		Artifact string   `json:"artifact,omitempty" mapstructure:"artifact"`
		Includes []string `json:"includes,omitempty" mapstructure:"includes"`
		Excludes []string `json:"excludes,omitempty" mapstructure:"excludes"`
	}

	// ManifestEntry is one attribute added to the merged manifest.
	ManifestEntry struct {
		Name  string `json:"name" mapstructure:"name"`
		Value string `json:"value" mapstructure:"value"`
	}

	// TransformerConfig configures one resource transformer.
	TransformerConfig struct {
		Kind TransformerKind `json:"kind" mapstructure:"kind"`
		// Resource is the entry merged by an appending transformer.
		Resource string `json:"resource,omitempty" mapstructure:"resource"`
		// MainClass overrides Main-Class in the merged manifest.
		MainClass       string          `json:"main_class,omitempty" mapstructure:"main_class"`
		ManifestEntries []ManifestEntry `json:"manifest_entries,omitempty" mapstructure:"manifest_entries"`
		// Suffixes lists the resource suffixes a dont-include transformer drops.
		Suffixes []string `json:"suffixes,omitempty" mapstructure:"suffixes"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// Config holds the application configuration.
	Config struct {
		// Inputs lists the archives to merge, in priority order.
		Inputs []string `json:"inputs" mapstructure:"inputs"`
		// Output is the path of the merged archive.
		Output       string              `json:"output" mapstructure:"output"`
		Relocations  []RelocationConfig  `json:"relocations" mapstructure:"relocations"`
		Filters      []FilterConfig      `json:"filters" mapstructure:"filters"`
		Transformers []TransformerConfig `json:"transformers" mapstructure:"transformers"`
		// Report is an optional path for the diagnostic export.
		Report string `json:"report,omitempty" mapstructure:"report"`
		// Reproducible stamps every entry with a fixed modification time.
		Reproducible bool `json:"reproducible" mapstructure:"reproducible"`
		// CacheSize is the capacity of the relocation memoization cache.
		CacheSize int      `json:"cache_size" mapstructure:"cache_size"`
		UI        UIConfig `json:"ui" mapstructure:"ui"`
		LogLevel  LogLevel `json:"log_level,omitempty" mapstructure:"log_level"`
	}
)

// String returns the string representation of the TransformerKind.
func (k TransformerKind) String() string { return string(k) }

// IsValid returns whether the TransformerKind is one of the built-in kinds,
// and a list of validation errors if it is not.
func (k TransformerKind) IsValid() (bool, []error) {
	switch k {
	case TransformerManifest, TransformerAppending, TransformerServices, TransformerDontInclude:
		return true, nil
	default:
		return false, []error{&InvalidTransformerKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidTransformerKindError.
func (e *InvalidTransformerKindError) Error() string {
	return fmt.Sprintf("invalid transformer kind %q (valid: manifest, appending, services, dont-include)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidTransformerKindError) Unwrap() error { return ErrInvalidTransformerKind }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is empty or one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidRelocationError.
func (e *InvalidRelocationError) Error() string {
	return fmt.Sprintf("relocations[%d]: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidRelocation for errors.Is() compatibility.
func (e *InvalidRelocationError) Unwrap() error { return ErrInvalidRelocation }

// Error implements the error interface for InvalidTransformerError.
func (e *InvalidTransformerError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("transformers[%d]: %s", e.Index, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidTransformer for errors.Is() compatibility.
func (e *InvalidTransformerError) Unwrap() error { return ErrInvalidTransformer }

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// isValid checks the constraints the schema cannot see once values arrive
// from flags or the environment.
func (r RelocationConfig) isValid(index int) (bool, []error) {
	if strings.TrimSpace(r.Pattern) == "" {
		return false, []error{&InvalidRelocationError{Index: index, Reason: "pattern must not be empty"}}
	}
	if r.Raw && (len(r.Includes) > 0 || len(r.Excludes) > 0) {
		return false, []error{&InvalidRelocationError{Index: index, Reason: "raw relocations do not support includes or excludes"}}
	}
	return true, nil
}

func (t TransformerConfig) isValid(index int) (bool, []error) {
	var errs []error
	if valid, fieldErrs := t.Kind.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	switch t.Kind {
	case TransformerAppending:
		if strings.TrimSpace(t.Resource) == "" {
			errs = append(errs, errors.New("appending transformer requires resource"))
		}
	case TransformerDontInclude:
		if len(t.Suffixes) == 0 {
			errs = append(errs, errors.New("dont-include transformer requires suffixes"))
		}
	case TransformerManifest:
		for i, entry := range t.ManifestEntries {
			if strings.TrimSpace(entry.Name) == "" {
				errs = append(errs, fmt.Errorf("manifest_entries[%d]: name must not be empty", i))
			}
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTransformerError{Index: index, FieldErrors: errs}}
	}
	return true, nil
}

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields. Rules that only the
// rule constructors can check (glob and regular expression syntax) are left
// to them.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for i, r := range c.Relocations {
		if valid, fieldErrs := r.isValid(i); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for i, t := range c.Transformers {
		if valid, fieldErrs := t.isValid(i); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Inputs:       []string{},
		Output:       "",
		Relocations:  []RelocationConfig{},
		Filters:      []FilterConfig{},
		Transformers: []TransformerConfig{},
		Reproducible: false,
		CacheSize:    DefaultCacheSize,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}
