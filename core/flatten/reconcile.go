package flatten

import (
	"fmt"
)

// MergePolicy controls how several flat rows are reconciled into a table.
type MergePolicy int

const (
	// MergeAppend keeps each row as its own output row.
	MergeAppend MergePolicy = iota
	// MergeOverwrite merges all rows into one; on collision the later value
	// wins.
	MergeOverwrite
	// MergeDisambiguate merges all rows into one; on collision the later
	// value is kept under a fresh suffixed column.
	MergeDisambiguate
)

// Reconcile computes a unified column set over rows and materialises the
// output table. Column order is first-seen order: rows are scanned in input
// order and each row contributes its columns in its own insertion order.
// Rows missing a column are padded with the empty string.
func Reconcile(rows []*Row, policy MergePolicy) ([]string, []map[string]string) {
	if policy == MergeAppend {
		return reconcileAppend(rows)
	}
	return reconcileMerge(rows, policy)
}

func reconcileAppend(rows []*Row) ([]string, []map[string]string) {
	var columns []string
	known := make(map[string]bool)
	for _, r := range rows {
		for _, c := range r.Columns() {
			if !known[c] {
				known[c] = true
				columns = append(columns, c)
			}
		}
	}

	table := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		out := make(map[string]string, len(columns))
		for _, c := range columns {
			v, _ := r.Get(c)
			out[c] = v
		}
		table = append(table, out)
	}
	return columns, table
}

func reconcileMerge(rows []*Row, policy MergePolicy) ([]string, []map[string]string) {
	merged := NewRow()
	for _, r := range rows {
		for _, c := range r.Columns() {
			v, _ := r.Get(c)
			if policy == MergeDisambiguate && merged.Has(c) {
				merged.Set(freeColumn(merged, c), v)
				continue
			}
			merged.Set(c, v)
		}
	}

	out := make(map[string]string, merged.Len())
	for _, c := range merged.Columns() {
		v, _ := merged.Get(c)
		out[c] = v
	}
	if merged.Len() == 0 {
		return nil, nil
	}
	return merged.Columns(), []map[string]string{out}
}

// freeColumn returns the smallest unused "<col>_<n>" name with n >= 2.
func freeColumn(row *Row, col string) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", col, n)
		if !row.Has(candidate) {
			return candidate
		}
	}
}
