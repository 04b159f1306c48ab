// Package flatten converts parsed JSON objects into flat rows of
// column-name → string-value pairs, ready for tabular output.
//
// Keys are canonicalised (lower case, underscore separated) and, when the
// same canonical key recurs across a batch, occurrences are disambiguated
// with numeric suffixes. Keys that encode a report hierarchy (section_title,
// sub_section_title) drive section counters so that sub-section fields are
// suffixed with their "N.M" position instead of a plain occurrence number.
//
// [Reconcile] unifies several rows into one column set with a stable
// first-seen order, either appending rows or merging them into a single
// wide row.
package flatten
