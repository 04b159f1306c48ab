package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edlowe/flatsheet/core/jsonval"
)

// SuffixPolicy controls when occurrence suffixes are appended to column names.
type SuffixPolicy int

const (
	// SuffixWhenRepeated appends "_<n>" only when the key's batch-wide total
	// is greater than one, keeping the common unique-field case undecorated.
	SuffixWhenRepeated SuffixPolicy = iota
	// SuffixAlways appends "_<n>" to every occurrence.
	SuffixAlways
)

// Options configures a [Flattener].
type Options struct {
	// Suffix selects the occurrence-suffix policy. Default: SuffixWhenRepeated.
	Suffix SuffixPolicy
	// Hierarchy enables section/sub-section marker handling. When off, the
	// marker keys are treated like any other key.
	Hierarchy bool
}

// Hierarchy marker keys, compared after canonicalisation.
const (
	sectionTitleKey    = "section_title"
	subSectionTitleKey = "sub_section_title"
	subFieldPrefix     = "sub_"
)

// Flattener carries the per-run state: the occurrence index plus the section
// counters that assign "N.M" suffixes to sub-section fields. One Flattener
// serves one conversion run and must not be reused across documents.
type Flattener struct {
	index *Index
	opts  Options

	section int
	sub     int
	subID   string // active "N.M" id, empty when no sub-section is open
}

// New returns a Flattener over the given per-run index.
func New(index *Index, opts Options) *Flattener {
	return &Flattener{index: index, opts: opts}
}

// Flatten converts one JSON object into a flat row. Nested objects recurse
// into the same flat namespace (no path prefixes); arrays and scalars render
// to single strings with newline escaping. Well-formed input never fails.
func (f *Flattener) Flatten(v jsonval.Value) *Row {
	row := NewRow()
	f.walk(v, row)
	return row
}

func (f *Flattener) walk(v jsonval.Value, row *Row) {
	for _, m := range v.Members() {
		canon := Canonical(m.Key)

		if f.opts.Hierarchy {
			switch canon {
			case sectionTitleKey:
				f.section++
				f.sub = 0
				f.subID = ""
			case subSectionTitleKey:
				f.sub++
				f.subID = fmt.Sprintf("%d.%d", f.section, f.sub)
			}
		}

		if m.Value.IsObject() {
			f.walk(m.Value, row)
			continue
		}
		row.Set(f.columnName(canon), renderLeaf(m.Value))
	}
}

// columnName decorates a canonical key. Sub-section fields take the active
// "N.M" id; everything else takes an occurrence number according to the
// suffix policy.
func (f *Flattener) columnName(canon string) string {
	if f.opts.Hierarchy && f.subID != "" && strings.HasPrefix(canon, subFieldPrefix) {
		return canon + "_" + f.subID
	}

	n := f.index.next(canon)
	if f.opts.Suffix == SuffixAlways || f.index.Total(canon) > 1 {
		return canon + "_" + strconv.Itoa(n)
	}
	return canon
}

// renderLeaf serialises a non-object value to its cell string. Array
// elements are rendered individually and joined by the literal `\n`
// sequence, the same escape applied to embedded newlines, so splitting on
// that sequence recovers the elements.
func renderLeaf(v jsonval.Value) string {
	if v.Kind() != jsonval.Array {
		return EscapeNewlines(v.Render())
	}

	elems := v.Elements()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = EscapeNewlines(e.Render())
	}
	return strings.Join(parts, `\n`)
}
