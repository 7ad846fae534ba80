// SPDX-License-Identifier: MPL-2.0

package shade

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"shade-cli/pkg/archive"
	"shade-cli/pkg/classfile"
	"shade-cli/pkg/filter"
	"shade-cli/pkg/relocation"
	"shade-cli/pkg/transform"
)

const (
	// IndexListName is the archive class index. Merging invalidates it, so it
	// is never copied.
	IndexListName = "META-INF/INDEX.LIST"

	classSuffix = ".class"
)

// ReproducibleModTime is the entry timestamp used for reproducible output.
var ReproducibleModTime = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

type (
	// ClassRewriter rewrites the symbolic references of one class file.
	ClassRewriter interface {
		Rewrite(data []byte, m classfile.Mapper) ([]byte, error)
	}

	// Request describes one merge.
	Request struct {
		// Inputs are the archives to merge. Their order decides which copy of
		// a colliding entry is kept.
		Inputs []string
		// Output is the archive to create.
		Output string
		// Filters exclude entries from specific archives.
		Filters []filter.Filter
		// Relocators rename packages, tried in order.
		Relocators []relocation.Relocator
		// Transformers merge resources, tried in order.
		Transformers []transform.Transformer
	}

	// Result summarizes a completed merge.
	Result struct {
		Output      string         `json:"output" yaml:"output" toml:"output"`
		Archives    int            `json:"archives" yaml:"archives" toml:"archives"`
		Entries     int            `json:"entries" yaml:"entries" toml:"entries"`
		Directories int            `json:"directories" yaml:"directories" toml:"directories"`
		Relocated   int            `json:"relocated" yaml:"relocated" toml:"relocated"`
		Duplicates  int            `json:"duplicates" yaml:"duplicates" toml:"duplicates"`
		Filtered    int            `json:"filtered" yaml:"filtered" toml:"filtered"`
		Transformed int            `json:"transformed" yaml:"transformed" toml:"transformed"`
		Overlaps    []OverlapGroup `json:"overlaps" yaml:"overlaps" toml:"overlaps"`
	}

	// Shader runs merges. A Shader holds no per-merge state and may be reused.
	Shader struct {
		logger    *log.Logger
		rewriter  ClassRewriter
		modTime   time.Time
		cacheSize int
	}

	// Option configures a Shader.
	Option func(*Shader)

	// merge is the state of one Shade call.
	merge struct {
		*Shader
		ctx      context.Context
		req      Request
		out      *archive.Writer
		written  *NameSet
		remapper *relocation.Remapper
		dups     *duplicateIndex
		result   *Result
		// absorbed maps an input index to the manifest entry the manifest
		// pass took from that archive.
		absorbed map[int]string
	}
)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Shader) { s.logger = l }
}

// WithRewriter replaces the class rewriter. The default rebuilds each
// constant pool so no relocated name survives in the output.
func WithRewriter(r ClassRewriter) Option {
	return func(s *Shader) { s.rewriter = r }
}

// WithModTime stamps every output entry with t.
func WithModTime(t time.Time) Option {
	return func(s *Shader) { s.modTime = t }
}

// WithCacheSize sets the size of the relocation memo cache; 0 disables it.
func WithCacheSize(n int) Option {
	return func(s *Shader) { s.cacheSize = n }
}

// New creates a Shader.
func New(opts ...Option) *Shader {
	s := &Shader{
		rewriter:  classfile.Rewriter{ReuseSymbolTable: false},
		cacheSize: relocation.DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Shade merges req.Inputs into req.Output. On error the partially written
// output is removed. Every filter's Finished is called before Shade returns,
// whatever the outcome. Cancellation of ctx is honored between archives.
func (s *Shader) Shade(ctx context.Context, req Request) (*Result, error) {
	defer func() {
		for _, f := range req.Filters {
			f.Finished()
		}
	}()

	if req.Output == "" {
		return nil, ErrNoOutput
	}

	var opts []archive.WriterOption
	if !s.modTime.IsZero() {
		opts = append(opts, archive.WithModTime(s.modTime))
	}
	out, err := archive.Create(req.Output, opts...)
	if err != nil {
		return nil, err
	}

	m := &merge{
		Shader:   s,
		ctx:      ctx,
		req:      req,
		out:      out,
		written:  NewNameSet(),
		remapper: relocation.NewRemapper(req.Relocators, s.cacheSize),
		dups:     newDuplicateIndex(),
		absorbed: make(map[int]string),
		result:   &Result{Output: req.Output, Archives: len(req.Inputs)},
	}
	if err := m.run(); err != nil {
		if abortErr := out.Abort(); abortErr != nil {
			s.logger.Warn("failed to remove incomplete output", "path", req.Output, "error", abortErr)
		}
		return nil, err
	}
	return m.result, nil
}

func (m *merge) run() error {
	manifest, transformers := transform.SplitManifest(m.req.Transformers)
	if manifest != nil {
		if err := m.manifestPass(manifest); err != nil {
			return err
		}
	}

	for i, path := range m.req.Inputs {
		if err := m.ctx.Err(); err != nil {
			return fmt.Errorf("merge cancelled before %s: %w", path, err)
		}
		if err := m.processArchive(i, path, transformers); err != nil {
			return err
		}
	}

	m.result.Overlaps = m.dups.overlaps(m.req.Inputs)
	reportOverlaps(m.logger, m.result.Overlaps)

	for _, t := range transformers {
		if !t.HasTransformedResource() {
			continue
		}
		if err := t.ModifyOutput(m); err != nil {
			return fmt.Errorf("failed to write transformed resources: %w", err)
		}
	}

	return m.out.Close()
}

// manifestPass feeds the first matching entry of each archive to t and
// writes the merged manifest ahead of every other entry. Later matches in the
// same archive are left to the main pass.
func (m *merge) manifestPass(t transform.ManifestStyle) error {
	for i, path := range m.req.Inputs {
		if err := m.ctx.Err(); err != nil {
			return fmt.Errorf("merge cancelled before %s: %w", path, err)
		}
		err := withArchive(path, func(r *archive.Reader) error {
			for _, e := range r.Entries() {
				if e.IsDir || !t.CanTransformResource(e.Name) {
					continue
				}
				data, err := e.ReadAll()
				if err != nil {
					return err
				}
				m.logger.Debug("absorbing manifest", "archive", path, "entry", e.Name)
				m.absorbed[i] = e.Name
				return t.ProcessResource(e.Name, bytes.NewReader(data), m.req.Relocators)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if !t.HasTransformedResource() {
		return nil
	}
	if err := t.ModifyOutput(m); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func (m *merge) processArchive(index int, path string, transformers []transform.Transformer) error {
	m.logger.Debug("processing archive", "archive", path)

	var filters []filter.Filter
	for _, f := range m.req.Filters {
		if f.CanFilter(path) {
			filters = append(filters, f)
		}
	}

	return withArchive(path, func(r *archive.Reader) error {
		for _, e := range r.Entries() {
			if e.Name == IndexListName || e.IsDir {
				continue
			}
			if isFiltered(filters, e.Name) {
				m.result.Filtered++
				continue
			}
			if absorbed, ok := m.absorbed[index]; ok && e.Name == absorbed {
				m.result.Transformed++
				continue
			}
			if err := m.processEntry(index, path, e, transformers); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *merge) processEntry(index int, path string, e *archive.Entry, transformers []transform.Transformer) error {
	name := m.remapper.Map(e.Name)
	if err := m.ensureDir(parentDir(name)); err != nil {
		return err
	}

	data, err := e.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read %s from %s: %w", e.Name, path, err)
	}

	if strings.HasSuffix(e.Name, classSuffix) {
		m.dups.record(e.Name, index, data)
		if m.written.Has(name) {
			m.logger.Debug("discarding duplicate class", "archive", path, "entry", name)
			m.result.Duplicates++
			return nil
		}
		if m.remapper.HasRelocators() {
			rewritten, err := m.rewriter.Rewrite(data, m.remapper)
			if err != nil {
				return &RewriteError{Archive: path, Entry: e.Name, Err: err}
			}
			if name != e.Name || !bytes.Equal(rewritten, data) {
				m.result.Relocated++
			}
			data = rewritten
		}
		return m.commit(name, data)
	}

	for _, t := range transformers {
		if t.CanTransformResource(name) {
			m.logger.Debug("transforming resource", "archive", path, "entry", name)
			m.result.Transformed++
			if err := t.ProcessResource(name, bytes.NewReader(data), m.req.Relocators); err != nil {
				return fmt.Errorf("failed to transform %s from %s: %w", e.Name, path, err)
			}
			return nil
		}
	}

	if m.written.Has(name) {
		m.result.Duplicates++
		return nil
	}
	return m.commit(name, data)
}

// ensureDir writes dir and every missing ancestor, parents first.
func (m *merge) ensureDir(dir string) error {
	if dir == "" || m.written.Has(dir) {
		return nil
	}
	if err := m.ensureDir(parentDir(dir)); err != nil {
		return err
	}
	if err := m.out.AddDirectory(dir); err != nil {
		return err
	}
	m.written.Add(dir)
	m.result.Directories++
	return nil
}

func (m *merge) commit(name string, data []byte) error {
	if err := m.out.AddBytes(name, data); err != nil {
		return err
	}
	m.written.Add(name)
	m.result.Entries++
	return nil
}

// WriteEntry implements transform.EntryWriter for transformer output.
func (m *merge) WriteEntry(name string, r io.Reader) error {
	if err := m.ensureDir(parentDir(name)); err != nil {
		return err
	}
	if m.written.Has(name) {
		m.logger.Debug("discarding transformed resource that already exists", "entry", name)
		m.result.Duplicates++
		return nil
	}
	if err := m.out.AddEntry(name, r); err != nil {
		return err
	}
	m.written.Add(name)
	m.result.Entries++
	return nil
}

func isFiltered(filters []filter.Filter, name string) bool {
	for _, f := range filters {
		if f.IsFiltered(name) {
			return true
		}
	}
	return false
}

// withArchive opens path, runs fn and closes the archive.
func withArchive(path string, fn func(*archive.Reader) error) (err error) {
	r, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return fn(r)
}
