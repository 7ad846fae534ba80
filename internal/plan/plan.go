// SPDX-License-Identifier: MPL-2.0

// Package plan turns a validated configuration into the engine's inputs:
// relocators, filters and transformers plus the Shader options.
package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"shade-cli/internal/config"
	"shade-cli/internal/issue"
	"shade-cli/pkg/filter"
	"shade-cli/pkg/relocation"
	"shade-cli/pkg/shade"
	"shade-cli/pkg/transform"
)

var (
	// ErrNoInputs is returned when the configuration names no input archive.
	ErrNoInputs = errors.New("no input archives")
	// ErrNoOutput is returned when the configuration names no output archive.
	ErrNoOutput = errors.New("no output archive")
	// ErrOutputIsInput is returned when the output would overwrite an input.
	ErrOutputIsInput = errors.New("output archive is also an input")
)

// Plan is a ready-to-run merge.
type Plan struct {
	Request shade.Request
	Options []shade.Option
}

// Build converts cfg into a Plan. Every rule is constructed up front so a
// bad pattern fails before the output archive is created.
func Build(cfg *config.Config, logger *log.Logger) (*Plan, error) {
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	if len(cfg.Inputs) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("plan merge").
			WithIssue(issue.NoInputsId).
			Wrap(ErrNoInputs).
			BuildError()
	}
	for _, in := range cfg.Inputs {
		info, err := os.Stat(in)
		if err != nil || info.IsDir() {
			if err == nil {
				err = fmt.Errorf("%s is a directory", in)
			}
			return nil, issue.NewErrorContext().
				WithOperation("plan merge").
				WithResource(in).
				WithIssue(issue.InputNotFoundId).
				Wrap(err).
				BuildError()
		}
	}

	if cfg.Output == "" {
		return nil, issue.NewErrorContext().
			WithOperation("plan merge").
			WithSuggestion("Pass the output path with -o, or set output in shade.cue").
			Wrap(ErrNoOutput).
			BuildError()
	}
	if err := checkOutput(cfg.Output, cfg.Inputs); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("plan merge").
			WithResource(cfg.Output).
			WithSuggestion("Write the merged archive to a new file").
			Wrap(err).
			BuildError()
	}

	relocators, err := Relocators(cfg.Relocations)
	if err != nil {
		return nil, invalidRule(err)
	}
	filters, err := Filters(cfg.Filters, logger)
	if err != nil {
		return nil, invalidRule(err)
	}
	transformers, err := Transformers(cfg.Transformers)
	if err != nil {
		return nil, invalidRule(err)
	}

	opts := []shade.Option{
		shade.WithLogger(logger),
		shade.WithCacheSize(cfg.CacheSize),
	}
	if cfg.Reproducible {
		opts = append(opts, shade.WithModTime(shade.ReproducibleModTime))
	}

	return &Plan{
		Request: shade.Request{
			Inputs:       cfg.Inputs,
			Output:       cfg.Output,
			Filters:      filters,
			Relocators:   relocators,
			Transformers: transformers,
		},
		Options: opts,
	}, nil
}

// Relocators builds one SimpleRelocator per entry, preserving order.
func Relocators(cfgs []config.RelocationConfig) ([]relocation.Relocator, error) {
	out := make([]relocation.Relocator, 0, len(cfgs))
	for i, c := range cfgs {
		r, err := relocation.NewSimpleRelocator(relocation.SimpleRelocatorOptions{
			Pattern:       c.Pattern,
			ShadedPattern: c.ShadedPattern,
			Includes:      c.Includes,
			Excludes:      c.Excludes,
			Raw:           c.Raw,
		})
		if err != nil {
			return nil, fmt.Errorf("relocations[%d]: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Filters builds one SimpleFilter per entry.
func Filters(cfgs []config.FilterConfig, logger *log.Logger) ([]filter.Filter, error) {
	out := make([]filter.Filter, 0, len(cfgs))
	for i, c := range cfgs {
		f, err := filter.NewSimpleFilter(filter.SimpleFilterOptions{
			Artifact: c.Artifact,
			Includes: c.Includes,
			Excludes: c.Excludes,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Transformers builds the configured transformers in order.
func Transformers(cfgs []config.TransformerConfig) ([]transform.Transformer, error) {
	out := make([]transform.Transformer, 0, len(cfgs))
	for i, c := range cfgs {
		switch c.Kind {
		case config.TransformerManifest:
			var attrs transform.Section
			for _, e := range c.ManifestEntries {
				attrs = attrs.Set(e.Name, e.Value)
			}
			out = append(out, transform.NewManifestTransformer(c.MainClass, attrs))
		case config.TransformerAppending:
			out = append(out, transform.NewAppendingTransformer(c.Resource))
		case config.TransformerServices:
			out = append(out, transform.NewServicesTransformer())
		case config.TransformerDontInclude:
			out = append(out, transform.NewDontIncludeTransformer(c.Suffixes...))
		default:
			return nil, fmt.Errorf("transformers[%d]: %w", i, &config.InvalidTransformerKindError{Value: c.Kind})
		}
	}
	return out, nil
}

func checkOutput(output string, inputs []string) error {
	outAbs, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		inAbs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		if inAbs == outAbs {
			return fmt.Errorf("%w: %s", ErrOutputIsInput, in)
		}
	}
	return nil
}

func invalidRule(err error) error {
	return issue.NewErrorContext().
		WithOperation("build merge rules").
		WithIssue(issue.InvalidRuleId).
		Wrap(err).
		BuildError()
}
