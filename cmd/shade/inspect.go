// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"shade-cli/internal/issue"
	"shade-cli/pkg/archive"
	"shade-cli/pkg/classfile"

	"github.com/spf13/cobra"
)

func newInspectCommand(app *App) *cobra.Command {
	var prefix string

	inspectCmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the classes of an archive",
		Long: `List the classes of an archive with their class-file version and super class.

Useful to check a merged archive: relocated classes show up under their new
package, and classes that cannot be parsed are flagged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.inspect(args[0], prefix)
		},
	}
	inspectCmd.Flags().StringVar(&prefix, "package", "", "only list classes under this dotted package")

	return inspectCmd
}

func (a *App) inspect(path, pkg string) error {
	r, err := archive.Open(path)
	if err != nil {
		return a.fail(issue.NewErrorContext().
			WithOperation("inspect archive").
			WithResource(path).
			Wrap(err).
			BuildError(), false, "auto")
	}
	defer func() { _ = r.Close() }()

	pathPrefix := strings.ReplaceAll(pkg, ".", "/")
	if pathPrefix != "" && !strings.HasSuffix(pathPrefix, "/") {
		pathPrefix += "/"
	}

	var classes, broken, resources int
	for _, e := range r.Entries() {
		if e.IsDir {
			continue
		}
		if !strings.HasSuffix(e.Name, ".class") {
			resources++
			continue
		}
		if !strings.HasPrefix(e.Name, pathPrefix) {
			continue
		}

		data, err := e.ReadAll()
		if err != nil {
			return a.fail(err, false, "auto")
		}
		cf, err := classfile.Parse(data)
		if err != nil {
			broken++
			fmt.Fprintf(a.stdout, "%s %s %s\n", ErrorStyle.Render("✗"), e.Name, VerboseStyle.Render(err.Error()))
			continue
		}

		classes++
		line := fmt.Sprintf("%s %s", CmdStyle.Render(strings.ReplaceAll(cf.ThisClass(), "/", ".")), VerboseStyle.Render(cf.Version()))
		if super := cf.SuperClass(); super != "" && super != "java/lang/Object" {
			line += SubtitleStyle.Render(" extends " + strings.ReplaceAll(super, "/", "."))
		}
		fmt.Fprintln(a.stdout, line)
	}

	fmt.Fprintf(a.stdout, "\n%d class(es), %d resource(s)", classes, resources)
	if broken > 0 {
		fmt.Fprint(a.stdout, ", "+WarningStyle.Render(fmt.Sprintf("%d unreadable class(es)", broken)))
	}
	fmt.Fprintln(a.stdout)
	return nil
}
