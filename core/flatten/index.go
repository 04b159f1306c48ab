package flatten

import "github.com/edlowe/flatsheet/core/jsonval"

// Index counts canonical-key occurrences for one conversion run. The totals
// come from a pre-pass over the whole batch; the seen counters advance as
// rows are flattened. An Index must never be shared across documents — each
// run owns its own.
type Index struct {
	total map[string]int
	seen  map[string]int
}

// NewIndex pre-scans the batch and records how many times each canonical key
// will appear in total. Nested objects are walked with the same flat
// namespace the flattener uses; keys inside arrays are not counted because
// arrays serialise to a single cell.
func NewIndex(values []jsonval.Value) *Index {
	ix := &Index{
		total: make(map[string]int),
		seen:  make(map[string]int),
	}
	for _, v := range values {
		ix.count(v)
	}
	return ix
}

func (ix *Index) count(v jsonval.Value) {
	for _, m := range v.Members() {
		ix.total[Canonical(m.Key)]++
		if m.Value.IsObject() {
			ix.count(m.Value)
		}
	}
}

// Total returns how many times the canonical key appears across the batch.
func (ix *Index) Total(key string) int { return ix.total[key] }

// next advances the seen counter for key and returns its 1-based occurrence
// number within the run.
func (ix *Index) next(key string) int {
	ix.seen[key]++
	return ix.seen[key]
}
