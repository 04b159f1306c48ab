// Package table defines the null-aware tabular model shared by the reshaper
// and the sheet codecs. A [Cell] distinguishes "no value" from "empty value";
// the reshaper depends on that distinction to mark sections that have no
// sub-sections.
package table

// Cell is one table value. The zero value is the null cell.
type Cell struct {
	Valid bool
	Value string
}

// Null is the explicit absent marker, distinct from an empty string.
var Null = Cell{}

// String returns a valid cell holding s.
func String(s string) Cell {
	return Cell{Valid: true, Value: s}
}

// Table is an ordered set of columns and rows. Every row has exactly one
// cell per column.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// New returns an empty table with the given column order.
func New(columns []string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds one row built from the column → cell mapping; columns
// missing from the mapping become null cells.
func (t *Table) AppendRow(cells map[string]Cell) {
	row := make([]Cell, len(t.Columns))
	for i, c := range t.Columns {
		row[i] = cells[c]
	}
	t.Rows = append(t.Rows, row)
}

// AppendStringRow adds one row of plain string values; columns missing from
// the mapping become valid empty cells (a wide row always has a value for
// every column).
func (t *Table) AppendStringRow(values map[string]string) {
	row := make([]Cell, len(t.Columns))
	for i, c := range t.Columns {
		row[i] = String(values[c])
	}
	t.Rows = append(t.Rows, row)
}

// Get returns the cell at row r for the named column. It returns the null
// cell when the column does not exist.
func (t *Table) Get(r int, column string) Cell {
	for i, c := range t.Columns {
		if c == column {
			return t.Rows[r][i]
		}
	}
	return Null
}

// RowMap returns row r as a column → string mapping, null cells omitted.
func (t *Table) RowMap(r int) map[string]string {
	out := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		if t.Rows[r][i].Valid {
			out[c] = t.Rows[r][i].Value
		}
	}
	return out
}
