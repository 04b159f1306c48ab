// Package reshape turns one wide report row — whose column names encode a
// section / sub-section hierarchy through numeric suffixes — into a long
// table with one row per section or sub-section leaf.
//
// Column names matching section_<field>_<N> are grouped by section number N;
// names matching sub_section_<field>_<N.M> (or the underscore-separated
// N_M variant) are grouped under their parent section. Everything else is a
// global field repeated verbatim on every output row. Output order is
// numeric — section 2 before section 10 — and byte-stable across runs.
//
// Applying Reshape to its own output is unsupported by design: long rows
// carry de-suffixed column names that match neither pattern, so a second
// pass yields zero rows.
package reshape
