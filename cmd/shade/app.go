// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"shade-cli/internal/config"
	"shade-cli/pkg/shade"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and delegate
	// through its service interfaces.
	App struct {
		Config ConfigProvider
		Merger Merger
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp. Tests can supply mock implementations
	// to isolate specific service behavior.
	Dependencies struct {
		Config ConfigProvider
		Merger Merger
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// Merger runs one merge. The production implementation is a shade.Shader
	// built from the plan's options.
	Merger interface {
		Merge(ctx context.Context, req shade.Request, opts ...shade.Option) (*shade.Result, error)
	}

	shaderMerger struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Merger == nil {
		deps.Merger = shaderMerger{}
	}

	return &App{
		Config: deps.Config,
		Merger: deps.Merger,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// Merge implements Merger.
func (shaderMerger) Merge(ctx context.Context, req shade.Request, opts ...shade.Option) (*shade.Result, error) {
	return shade.New(opts...).Shade(ctx, req)
}

// newLogger builds the CLI logger. An explicit log_level wins over verbose.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level := log.InfoLevel
	if cfg.UI.Verbose {
		level = log.DebugLevel
	}
	if cfg.LogLevel != "" {
		if parsed, err := log.ParseLevel(cfg.LogLevel.String()); err == nil {
			level = parsed
		}
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// applyColorScheme forces lipgloss's background detection when the scheme
// is not automatic, and returns the matching glamour style.
func applyColorScheme(cs config.ColorScheme) string {
	switch cs {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	default:
		return "auto"
	}
	return cs.String()
}
