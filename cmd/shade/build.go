// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shade-cli/internal/config"
	"shade-cli/internal/issue"
	"shade-cli/internal/plan"
	"shade-cli/internal/report"
	"shade-cli/pkg/shade"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// buildOptions are the `shade build` flags. They extend the configuration
// file rather than replace it.
type buildOptions struct {
	output       string
	relocations  []string
	includes     []string
	excludes     []string
	mainClass    string
	services     bool
	appends      []string
	report       string
	reproducible bool
}

func newBuildCommand(app *App, root *rootOptions) *cobra.Command {
	opts := &buildOptions{}

	buildCmd := &cobra.Command{
		Use:   "build [flags] [archive...]",
		Short: "Merge archives into one output archive",
		Long: `Merge archives into one output archive.

Archives given as arguments are appended to 'inputs' from the configuration.
The first archive that contains an entry wins; later copies are discarded and
classes defined by several archives are reported as overlaps.`,
		Example: `  shade build -o app-all.jar app.jar lib/*.jar
  shade build -o app-all.jar --relocate org.slf4j:app.shaded.slf4j --services app.jar slf4j-api.jar
  shade build -o app-all.jar --exclude 'META-INF/*.SF' --main-class com.acme.Main app.jar lib/*.jar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runBuild(cmd.Context(), root, opts, cmd.Flags().Changed("reproducible"), args)
		},
	}

	flags := buildCmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output archive path")
	flags.StringArrayVar(&opts.relocations, "relocate", nil, "relocate a package, as from[:to] (repeatable)")
	flags.StringArrayVar(&opts.includes, "include", nil, "keep only entries matching this glob (repeatable)")
	flags.StringArrayVar(&opts.excludes, "exclude", nil, "drop entries matching this glob (repeatable)")
	flags.StringVar(&opts.mainClass, "main-class", "", "set Main-Class in the merged manifest")
	flags.BoolVar(&opts.services, "services", false, "merge META-INF/services provider files")
	flags.StringArrayVar(&opts.appends, "append", nil, "concatenate every copy of this resource (repeatable)")
	flags.StringVar(&opts.report, "report", "", "write a diagnostic report (.toml, .yaml, .yml or .json)")
	flags.BoolVar(&opts.reproducible, "reproducible", false, "use a fixed modification time for every entry")

	return buildCmd
}

func (a *App) runBuild(ctx context.Context, root *rootOptions, opts *buildOptions, reproducibleSet bool, args []string) error {
	cfg, _, err := a.loadConfig(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose, "auto")
	}
	glamourStyle := applyColorScheme(cfg.UI.ColorScheme)

	if err := opts.apply(cfg, args, reproducibleSet); err != nil {
		return a.fail(err, cfg.UI.Verbose, glamourStyle)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return a.fail(issue.NewErrorContext().
			WithOperation("validate build options").
			WithIssue(issue.InvalidRuleId).
			Wrap(errors.Join(errs...)).
			BuildError(), cfg.UI.Verbose, glamourStyle)
	}

	logger := a.newLogger(cfg)

	p, err := plan.Build(cfg, logger)
	if err != nil {
		return a.fail(err, cfg.UI.Verbose, glamourStyle)
	}

	logger.Debug("merging archives", "inputs", len(cfg.Inputs), "output", cfg.Output)
	res, err := a.Merger.Merge(ctx, p.Request, p.Options...)
	if err != nil {
		return a.fail(issue.NewErrorContext().
			WithOperation("merge archives").
			WithResource(cfg.Output).
			Wrap(err).
			BuildError(), cfg.UI.Verbose, glamourStyle)
	}

	if cfg.Report != "" {
		if err := report.Write(cfg.Report, res); err != nil {
			return a.fail(issue.NewErrorContext().
				WithOperation("write report").
				WithResource(cfg.Report).
				WithSuggestion("Use a .toml, .yaml, .yml or .json file name").
				Wrap(err).
				BuildError(), cfg.UI.Verbose, glamourStyle)
		}
		logger.Info("wrote report", "path", cfg.Report)
	}

	printSummary(a.stdout, res)
	return nil
}

// apply merges the command line into cfg.
func (o *buildOptions) apply(cfg *config.Config, args []string, reproducibleSet bool) error {
	cfg.Inputs = append(cfg.Inputs, args...)
	if o.output != "" {
		cfg.Output = o.output
	}

	for _, arg := range o.relocations {
		r, err := parseRelocation(arg)
		if err != nil {
			return err
		}
		cfg.Relocations = append(cfg.Relocations, r)
	}

	if len(o.includes) > 0 || len(o.excludes) > 0 {
		cfg.Filters = append(cfg.Filters, config.FilterConfig{
			Artifact: "*",
			Includes: o.includes,
			Excludes: o.excludes,
		})
	}

	if o.mainClass != "" {
		manifest := findTransformer(cfg.Transformers, config.TransformerManifest)
		if manifest == nil {
			cfg.Transformers = append(cfg.Transformers, config.TransformerConfig{Kind: config.TransformerManifest})
			manifest = &cfg.Transformers[len(cfg.Transformers)-1]
		}
		manifest.MainClass = o.mainClass
	}
	if o.services && findTransformer(cfg.Transformers, config.TransformerServices) == nil {
		cfg.Transformers = append(cfg.Transformers, config.TransformerConfig{Kind: config.TransformerServices})
	}
	for _, resource := range o.appends {
		cfg.Transformers = append(cfg.Transformers, config.TransformerConfig{
			Kind:     config.TransformerAppending,
			Resource: resource,
		})
	}

	if o.report != "" {
		cfg.Report = o.report
	}
	if reproducibleSet {
		cfg.Reproducible = o.reproducible
	}
	return nil
}

// parseRelocation parses "from[:to]". Without "to" the default shaded prefix applies.
func parseRelocation(arg string) (config.RelocationConfig, error) {
	from, to, _ := strings.Cut(arg, ":")
	from = strings.TrimSpace(from)
	if from == "" {
		return config.RelocationConfig{}, issue.NewErrorContext().
			WithOperation("parse --relocate").
			WithResource(arg).
			WithIssue(issue.InvalidRuleId).
			WithSuggestion("Use the form from[:to], e.g. --relocate com.google.common:app.shaded.guava").
			Wrap(config.ErrInvalidRelocation).
			BuildError()
	}
	return config.RelocationConfig{Pattern: from, ShadedPattern: strings.TrimSpace(to)}, nil
}

func findTransformer(ts []config.TransformerConfig, kind config.TransformerKind) *config.TransformerConfig {
	for i := range ts {
		if ts[i].Kind == kind {
			return &ts[i]
		}
	}
	return nil
}

// printSummary renders the merge counters as a table.
func printSummary(w io.Writer, res *shade.Result) {
	fmt.Fprintf(w, "%s Merged %d archive(s) into %s\n\n",
		SuccessStyle.Render("✓"), res.Archives, CmdStyle.Render(res.Output))

	rows := [][]string{
		{"entries", strconv.Itoa(res.Entries)},
		{"directories", strconv.Itoa(res.Directories)},
		{"relocated classes", strconv.Itoa(res.Relocated)},
		{"duplicates discarded", strconv.Itoa(res.Duplicates)},
		{"filtered", strconv.Itoa(res.Filtered)},
		{"transformed resources", strconv.Itoa(res.Transformed)},
		{"overlap groups", strconv.Itoa(len(res.Overlaps))},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(summaryBorderStyle).
		Headers("", "count").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return summaryHeaderStyle
			}
			return summaryCellStyle
		})
	fmt.Fprintln(w, t.Render())

	if len(res.Overlaps) > 0 {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%d group(s) of archives define the same classes, see the warnings above", len(res.Overlaps))))
	}
}
