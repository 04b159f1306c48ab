package convert

import (
	"errors"

	"github.com/edlowe/flatsheet/core/extract"
	"github.com/edlowe/flatsheet/core/flatten"
	"github.com/edlowe/flatsheet/core/table"
)

// ErrEmptyInput reports that extraction found no usable JSON object in the
// document. It aborts the conversion before any flattening happens.
var ErrEmptyInput = errors.New("no valid JSON objects found in input")

// ErrNoHierarchy reports that a wide row carries no recognizable section or
// sub-section columns; callers must skip writing output rather than persist
// an empty table.
var ErrNoHierarchy = errors.New("no section or sub-section columns found")

// Option configures a Converter.
type Option func(*Converter)

// WithMergePolicy selects how the flat rows of a multi-object document are
// reconciled. Default: flatten.MergeOverwrite (one wide row per document).
func WithMergePolicy(p flatten.MergePolicy) Option {
	return func(c *Converter) { c.merge = p }
}

// WithSuffixPolicy selects the occurrence-suffix policy.
// Default: flatten.SuffixWhenRepeated.
func WithSuffixPolicy(p flatten.SuffixPolicy) Option {
	return func(c *Converter) { c.suffix = p }
}

// WithHierarchyDetection toggles section/sub-section marker handling.
// Default: enabled.
func WithHierarchyDetection(on bool) Option {
	return func(c *Converter) { c.hierarchy = on }
}

// Converter is the conversion engine. It holds configuration only; all
// per-run state lives inside Convert.
type Converter struct {
	merge     flatten.MergePolicy
	suffix    flatten.SuffixPolicy
	hierarchy bool
}

// New returns a Converter with the given options applied over the defaults.
func New(opts ...Option) *Converter {
	c := &Converter{
		merge:     flatten.MergeOverwrite,
		suffix:    flatten.SuffixWhenRepeated,
		hierarchy: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one conversion run.
type Result struct {
	// Table holds the wide output: unified columns, one row per extracted
	// object in append mode or a single merged row otherwise.
	Table *table.Table
	// Warnings lists the fragments extraction had to skip.
	Warnings []extract.Warning
}

// Convert runs the full pipeline over one document. Per-block parse failures
// are recovered locally and reported as warnings; only a document yielding
// zero objects is a terminal error ([ErrEmptyInput]).
func (c *Converter) Convert(text string) (*Result, error) {
	values, warnings := extract.Extract(text)
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}

	index := flatten.NewIndex(values)
	f := flatten.New(index, flatten.Options{
		Suffix:    c.suffix,
		Hierarchy: c.hierarchy,
	})

	rows := make([]*flatten.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, f.Flatten(v))
	}

	columns, mapped := flatten.Reconcile(rows, c.merge)
	t := table.New(columns)
	for _, m := range mapped {
		t.AppendStringRow(m)
	}

	return &Result{Table: t, Warnings: warnings}, nil
}
