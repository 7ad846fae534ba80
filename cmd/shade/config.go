// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"shade-cli/internal/config"
	"shade-cli/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `shade config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, root *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage shade configuration",
		Long: `Manage shade configuration.

Configuration is read from the file given with --config, or from
'shade.cue' in the current directory. SHADE_* environment variables
override scalar settings (for example SHADE_OUTPUT or SHADE_UI_VERBOSE).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context(), root)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration template to ./shade.cue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig(root, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath(cmd.Context(), root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the resolved configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return app.fail(err, root.verbose, "auto")
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context, root *rootOptions) error {
	cfg, path, err := a.loadConfig(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose, "auto")
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := a.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	writeList(w, "inputs", cfg.Inputs)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("output"), valueOrNone(cfg.Output))

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("relocations"))
	if len(cfg.Relocations) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, r := range cfg.Relocations {
		target := r.ShadedPattern
		if target == "" {
			target = "(default prefix)"
		}
		line := fmt.Sprintf("  - %s -> %s", valueStyle.Render(r.Pattern), valueStyle.Render(target))
		if r.Raw {
			line += VerboseStyle.Render(" (raw)")
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("filters"))
	if len(cfg.Filters) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, f := range cfg.Filters {
		artifact := f.Artifact
		if artifact == "" {
			artifact = "*"
		}
		fmt.Fprintf(w, "  - %s include=%s exclude=%s\n", valueStyle.Render(artifact),
			strings.Join(f.Includes, ","), strings.Join(f.Excludes, ","))
	}

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("transformers"))
	if len(cfg.Transformers) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, t := range cfg.Transformers {
		fmt.Fprintf(w, "  - %s%s\n", valueStyle.Render(t.Kind.String()), transformerDetail(t))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("report"), valueOrNone(cfg.Report))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("reproducible"), valueStyle.Render(fmt.Sprintf("%v", cfg.Reproducible)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("cache_size"), valueStyle.Render(fmt.Sprintf("%d", cfg.CacheSize)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log_level"), valueOrNone(cfg.LogLevel.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func (a *App) initConfig(root *rootOptions, force bool) error {
	path := root.cfgFile
	if path == "" {
		path = config.DefaultPath(".")
	}

	cfg := config.DefaultConfig()
	cfg.Output = "build/app-all.jar"
	cfg.Transformers = []config.TransformerConfig{
		{Kind: config.TransformerManifest},
		{Kind: config.TransformerServices},
	}

	if err := config.Save(cfg, path, force); err != nil {
		ae := issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			Wrap(err)
		if errors.Is(err, config.ErrConfigExists) {
			ae.WithSuggestion("Pass --force to overwrite it")
		}
		return a.fail(ae.BuildError(), root.verbose, "auto")
	}

	fmt.Fprintf(a.stdout, "%s Created configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func (a *App) showConfigPath(ctx context.Context, root *rootOptions) error {
	_, path, err := a.loadConfig(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose, "auto")
	}
	if path == "" {
		fmt.Fprintf(a.stdout, "Config file: %s\n", SubtitleStyle.Render("(none, using defaults)"))
		return nil
	}
	fmt.Fprintf(a.stdout, "Config file: %s\n", path)
	return nil
}

func writeList(w io.Writer, key string, values []string) {
	fmt.Fprintf(w, "%s:", CmdStyle.Render(key))
	if len(values) == 0 {
		fmt.Fprintf(w, " %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	fmt.Fprintln(w)
	for _, v := range values {
		fmt.Fprintf(w, "  - %s\n", SuccessStyle.Render(v))
	}
}

func valueOrNone(v string) string {
	if v == "" {
		return SubtitleStyle.Render("(not set)")
	}
	return SuccessStyle.Render(v)
}

func transformerDetail(t config.TransformerConfig) string {
	switch t.Kind {
	case config.TransformerManifest:
		if t.MainClass != "" {
			return " Main-Class=" + t.MainClass
		}
	case config.TransformerAppending:
		return " " + t.Resource
	case config.TransformerDontInclude:
		return " " + strings.Join(t.Suffixes, ",")
	}
	return ""
}
