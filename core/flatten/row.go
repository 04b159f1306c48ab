package flatten

// Row is a flat column → value mapping that preserves the order in which
// columns were first set. Every column within a row is unique; setting an
// existing column overwrites its value but keeps its position.
type Row struct {
	cols   []string
	values map[string]string
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// Set stores value under col, appending the column on first use.
func (r *Row) Set(col, value string) {
	if _, ok := r.values[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.values[col] = value
}

// Get returns the value for col and whether the column exists.
func (r *Row) Get(col string) (string, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Has reports whether col exists in the row.
func (r *Row) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Columns returns the row's columns in insertion order.
func (r *Row) Columns() []string { return r.cols }

// Len returns the number of columns in the row.
func (r *Row) Len() int { return len(r.cols) }
