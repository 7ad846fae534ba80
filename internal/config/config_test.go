// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shade-cli/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := DefaultPath(dir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.CacheSize != DefaultCacheSize {
		t.Errorf("expected default cache size %d, got %d", DefaultCacheSize, cfg.CacheSize)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme to be auto, got %s", cfg.UI.ColorScheme)
	}
	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
	if cfg.Reproducible {
		t.Error("expected reproducible to be false by default")
	}
	if len(cfg.Inputs) != 0 || len(cfg.Relocations) != 0 || len(cfg.Filters) != 0 || len(cfg.Transformers) != 0 {
		t.Errorf("expected empty rule lists, got %+v", cfg)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.CacheSize != DefaultCacheSize || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
inputs: ["app.jar", "lib/guava.jar"]
output: "dist/app-all.jar"
relocations: [
	{pattern: "com.google.common", shaded_pattern: "app.shaded.guava", excludes: ["com.google.common.base.*"]},
]
filters: [
	{artifact: "guava-*.jar", excludes: ["META-INF/*.SF"]},
]
transformers: [
	{kind: "manifest", main_class: "com.acme.Main", manifest_entries: [{name: "Implementation-Version", value: "1.2"}]},
	{kind: "services"},
	{kind: "appending", resource: "reference.conf"},
]
reproducible: true
cache_size: 128
ui: {verbose: true}
`)

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}

	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "lib/guava.jar" {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}
	if cfg.Output != "dist/app-all.jar" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if len(cfg.Relocations) != 1 || cfg.Relocations[0].ShadedPattern != "app.shaded.guava" ||
		len(cfg.Relocations[0].Excludes) != 1 {
		t.Errorf("Relocations = %+v", cfg.Relocations)
	}
	if len(cfg.Filters) != 1 || cfg.Filters[0].Artifact != "guava-*.jar" {
		t.Errorf("Filters = %+v", cfg.Filters)
	}
	if len(cfg.Transformers) != 3 {
		t.Fatalf("Transformers = %+v", cfg.Transformers)
	}
	manifest := cfg.Transformers[0]
	if manifest.Kind != TransformerManifest || manifest.MainClass != "com.acme.Main" {
		t.Errorf("manifest transformer = %+v", manifest)
	}
	if len(manifest.ManifestEntries) != 1 || manifest.ManifestEntries[0].Name != "Implementation-Version" {
		t.Errorf("manifest entries = %+v, attribute names must keep their case", manifest.ManifestEntries)
	}
	if cfg.Transformers[2].Resource != "reference.conf" {
		t.Errorf("appending transformer = %+v", cfg.Transformers[2])
	}
	if !cfg.Reproducible || cfg.CacheSize != 128 || !cfg.UI.Verbose {
		t.Errorf("scalars = reproducible %v, cache %d, verbose %v", cfg.Reproducible, cfg.CacheSize, cfg.UI.Verbose)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("unset color scheme should keep its default, got %q", cfg.UI.ColorScheme)
	}
}

func TestLoad_ExplicitFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `output: "local.jar"`)

	explicit := filepath.Join(t.TempDir(), "other.cue")
	if err := os.WriteFile(explicit, []byte(`output: "explicit.jar"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: explicit, WorkDir: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != explicit || cfg.Output != "explicit.jar" {
		t.Errorf("Load() = %q from %q, want explicit.jar from %q", cfg.Output, path, explicit)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, _, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit config file")
	}
	if id, ok := issue.IssueOf(err); !ok || id != issue.ConfigLoadFailedId {
		t.Errorf("IssueOf() = %d, %v, want ConfigLoadFailedId", id, ok)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", `outptu: "app.jar"`},
		{"wrong type", `reproducible: "yes"`},
		{"unknown transformer kind", `transformers: [{kind: "shuffle"}]`},
		{"empty relocation pattern", `relocations: [{pattern: ""}]`},
		{"negative cache size", `cache_size: -1`},
		{"bad log level", `log_level: "trace"`},
		{"syntax error", `inputs: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeConfig(t, dir, tt.content)

			_, _, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: dir})
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error %q should name the config file", err)
			}
			if id, ok := issue.IssueOf(err); !ok || id != issue.ConfigLoadFailedId {
				t.Errorf("IssueOf() = %d, %v, want ConfigLoadFailedId", id, ok)
			}
		})
	}
}

func TestLoad_SemanticValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `transformers: [{kind: "appending"}]`)

	_, _, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: dir})
	if err == nil {
		t.Fatal("Load() should reject an appending transformer without resource")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `output: "file.jar"`)

	t.Setenv("SHADE_OUTPUT", "env.jar")
	t.Setenv("SHADE_UI_VERBOSE", "true")

	cfg, _, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Output != "env.jar" {
		t.Errorf("Output = %q, want env override", cfg.Output)
	}
	if !cfg.UI.Verbose {
		t.Error("SHADE_UI_VERBOSE should enable verbose output")
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewProvider().Load(ctx, LoadOptions{WorkDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Inputs = []string{"a.jar", "b.jar"}
	cfg.Output = "out.jar"
	cfg.Relocations = []RelocationConfig{
		{Pattern: "org.slf4j", ShadedPattern: "app.slf4j", Includes: []string{"org.slf4j.**"}},
		{Pattern: "^META-INF/x", ShadedPattern: "META-INF/y", Raw: true},
	}
	cfg.Filters = []FilterConfig{{Excludes: []string{"**/*.html"}}}
	cfg.Transformers = []TransformerConfig{
		{Kind: TransformerManifest, MainClass: "app.Main", ManifestEntries: []ManifestEntry{{Name: "Built-By", Value: "ci"}}},
		{Kind: TransformerDontInclude, Suffixes: []string{".txt"}},
	}
	cfg.Report = "shade-report.toml"
	cfg.LogLevel = LogLevelWarn
	cfg.UI.ColorScheme = ColorSchemeDark

	dir := t.TempDir()
	path := DefaultPath(dir)
	if err := Save(cfg, path, false); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, _, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: dir})
	if err != nil {
		t.Fatalf("Load() of generated config failed: %v\n%s", err, GenerateCUE(cfg))
	}

	if strings.Join(loaded.Inputs, ",") != "a.jar,b.jar" || loaded.Output != "out.jar" {
		t.Errorf("inputs/output = %v / %q", loaded.Inputs, loaded.Output)
	}
	if len(loaded.Relocations) != 2 || !loaded.Relocations[1].Raw || loaded.Relocations[0].Includes[0] != "org.slf4j.**" {
		t.Errorf("Relocations = %+v", loaded.Relocations)
	}
	if len(loaded.Filters) != 1 || loaded.Filters[0].Artifact != "*" {
		t.Errorf("Filters = %+v", loaded.Filters)
	}
	if len(loaded.Transformers) != 2 || loaded.Transformers[0].ManifestEntries[0].Value != "ci" {
		t.Errorf("Transformers = %+v", loaded.Transformers)
	}
	if loaded.Report != cfg.Report || loaded.LogLevel != LogLevelWarn || loaded.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("scalars = %q %q %q", loaded.Report, loaded.LogLevel, loaded.UI.ColorScheme)
	}
}

func TestSave_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `output: "keep.jar"`)

	if err := Save(DefaultConfig(), path, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("Save() error = %v, want ErrConfigExists", err)
	}
	if err := Save(DefaultConfig(), path, true); err != nil {
		t.Errorf("Save(overwrite) returned error: %v", err)
	}
}

func TestJSONPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"output"}, "output"},
		{[]string{"relocations", "0", "pattern"}, "relocations[0].pattern"},
		{[]string{"transformers", "1", "manifest_entries", "2", "name"}, "transformers[1].manifest_entries[2].name"},
	}

	for _, tt := range tests {
		if got := jsonPath(tt.in); got != tt.want {
			t.Errorf("jsonPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeCUE_FileTooLarge(t *testing.T) {
	t.Parallel()

	data := make([]byte, MaxFileSize+1)
	if _, err := decodeCUE(data, "big.cue"); err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("decodeCUE() error = %v, want size error", err)
	}
}
