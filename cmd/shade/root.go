// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"shade-cli/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose bool
	cfgFile string
}

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "shade",
		Short: "Merge JVM archives into one, relocating bundled packages",
		Long: TitleStyle.Render("shade") + SubtitleStyle.Render(" - Merge JVM archives into one, relocating bundled packages") + `

shade combines an application archive and its dependencies into a single
archive. Earlier inputs win when two archives contain the same entry, and
classes can be moved under a private package prefix so they never clash
with another copy of the same library on the class path.

Rules are read from 'shade.cue' in the current directory (or --config)
and can be extended on the command line.

` + SubtitleStyle.Render("Examples:") + `
  shade build -o app-all.jar app.jar lib/*.jar
  shade build -o app-all.jar --relocate com.google.common:app.shaded.guava app.jar guava.jar
  shade inspect app-all.jar
  shade config init`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./"+config.ConfigFileName+"."+config.ConfigFileExt+")")

	rootCmd.AddCommand(newBuildCommand(app, opts))
	rootCmd.AddCommand(newConfigCommand(app, opts))
	rootCmd.AddCommand(newInspectCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command tree.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	// Interrupts cancel the command context; the merge stops between archives.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		// Command handlers always return ExitError; anything else is a flag
		// or argument error reported by cobra.
		os.Exit(ExitUsage)
	}
}

// loadConfig loads configuration for a command, applying the --verbose flag.
func (a *App) loadConfig(ctx context.Context, opts *rootOptions) (*config.Config, string, error) {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: opts.cfgFile})
	if err != nil {
		return nil, "", err
	}
	if opts.verbose {
		cfg.UI.Verbose = true
	}
	return cfg, path, nil
}

// fail renders err with its issue help page and wraps it for fang.
func (a *App) fail(err error, verbose bool, glamourStyle string) error {
	issueID, styled := classifyError(err, verbose)
	svcErr := newServiceError(err, issueID, styled)
	renderServiceError(a.stderr, svcErr, glamourStyle, a.newLogger(config.DefaultConfig()))
	return &ExitError{Code: ExitFailure, Err: svcErr}
}

// errorHandler skips errors that were already rendered with their issue page.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
