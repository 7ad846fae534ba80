// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"shade-cli/internal/config"
	"shade-cli/internal/issue"
	"shade-cli/internal/testutil"
	"shade-cli/pkg/relocation"
	"shade-cli/pkg/shade"
	"shade-cli/pkg/transform"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func inputJar(t *testing.T, dir, name string, entries ...testutil.ArchiveEntry) string {
	t.Helper()
	return testutil.WriteArchive(t, filepath.Join(dir, name), entries...)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Inputs = []string{inputJar(t, dir, "a.jar", testutil.File("a.txt", "a"))}
	cfg.Output = filepath.Join(dir, "out.jar")
	cfg.Relocations = []config.RelocationConfig{{Pattern: "com.x"}, {Pattern: "org.y", ShadedPattern: "z.y"}}
	cfg.Filters = []config.FilterConfig{{Excludes: []string{"**/*.txt"}}}
	cfg.Transformers = []config.TransformerConfig{
		{Kind: config.TransformerServices},
		{Kind: config.TransformerManifest, MainClass: "app.Main"},
		{Kind: config.TransformerAppending, Resource: "reference.conf"},
		{Kind: config.TransformerDontInclude, Suffixes: []string{".txt"}},
	}
	cfg.Reproducible = true

	p, err := Build(cfg, quietLogger())
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	if len(p.Request.Relocators) != 2 || len(p.Request.Filters) != 1 || len(p.Request.Transformers) != 4 {
		t.Errorf("Request = %+v", p.Request)
	}
	if r, ok := p.Request.Relocators[0].(*relocation.SimpleRelocator); !ok || r.ShadedPattern() != "hidden.com.x" {
		t.Errorf("first relocator = %#v, want default shaded pattern", p.Request.Relocators[0])
	}
	if _, ok := p.Request.Transformers[1].(*transform.ManifestTransformer); !ok {
		t.Errorf("transformers keep their configured order, got %T at 1", p.Request.Transformers[1])
	}
	if len(p.Options) != 3 {
		t.Errorf("reproducible plan should carry 3 options, got %d", len(p.Options))
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := inputJar(t, dir, "in.jar", testutil.File("x", "x"))

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		sentinel error
		issueID issue.Id
	}{
		{"no inputs", func(c *config.Config) { c.Inputs = nil }, ErrNoInputs, issue.NoInputsId},
		{"missing input", func(c *config.Config) { c.Inputs = []string{filepath.Join(dir, "missing.jar")} }, nil, issue.InputNotFoundId},
		{"input is directory", func(c *config.Config) { c.Inputs = []string{dir} }, nil, issue.InputNotFoundId},
		{"no output", func(c *config.Config) { c.Output = "" }, ErrNoOutput, 0},
		{"output is input", func(c *config.Config) { c.Output = jar }, ErrOutputIsInput, 0},
		{"bad raw relocation", func(c *config.Config) {
			c.Relocations = []config.RelocationConfig{{Pattern: "([", Raw: true}}
		}, relocation.ErrInvalidRelocator, issue.InvalidRuleId},
		{"unknown transformer", func(c *config.Config) {
			c.Transformers = []config.TransformerConfig{{Kind: "shuffle"}}
		}, config.ErrInvalidTransformerKind, issue.InvalidRuleId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Inputs = []string{jar}
			cfg.Output = filepath.Join(dir, "out-"+tt.name+".jar")
			tt.mutate(cfg)

			_, err := Build(cfg, quietLogger())
			if err == nil {
				t.Fatal("Build() should fail")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v should wrap %v", err, tt.sentinel)
			}
			id, ok := issue.IssueOf(err)
			if tt.issueID == 0 {
				if ok {
					t.Errorf("IssueOf() = %d, want none", id)
				}
			} else if id != tt.issueID {
				t.Errorf("IssueOf() = %d, want %d", id, tt.issueID)
			}
		})
	}
}

func TestBuild_RunsThroughShader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Inputs = []string{
		inputJar(t, dir, "a.jar",
			testutil.File("com/x/A.class", string(testutil.NewClass("com/x/A").Bytes())),
			testutil.File("notes.txt", "drop me"),
		),
	}
	cfg.Output = filepath.Join(dir, "out.jar")
	cfg.Relocations = []config.RelocationConfig{{Pattern: "com.x", ShadedPattern: "lib.x"}}
	cfg.Transformers = []config.TransformerConfig{{Kind: config.TransformerDontInclude, Suffixes: []string{".txt"}}}

	p, err := Build(cfg, quietLogger())
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	res, err := shade.New(p.Options...).Shade(context.Background(), p.Request)
	if err != nil {
		t.Fatalf("Shade() returned error: %v", err)
	}

	entries := testutil.ReadArchive(t, cfg.Output)
	if _, ok := testutil.FindEntry(entries, "lib/x/A.class"); !ok {
		t.Errorf("relocated class missing, got %v", testutil.EntryNames(entries))
	}
	if _, ok := testutil.FindEntry(entries, "notes.txt"); ok {
		t.Error("dont-include transformer should drop notes.txt")
	}
	if res.Relocated != 1 {
		t.Errorf("Relocated = %d, want 1", res.Relocated)
	}
}
