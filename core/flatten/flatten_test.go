package flatten

import (
	"strings"
	"testing"

	"github.com/edlowe/flatsheet/core/jsonval"
)

func mustDecode(t *testing.T, text string) jsonval.Value {
	t.Helper()
	v, err := jsonval.Decode(text)
	if err != nil {
		t.Fatalf("Decode(%q) failed: %v", text, err)
	}
	return v
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"  Section Title ", "section_title"},
		{"related-article-source", "related_article_source"},
		{"a  b--c", "a_b_c"},
		{"already_fine", "already_fine"},
		{"Mixed - Case  Key", "mixed_case_key"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestEscapeNewlines_RoundTrip(t *testing.T) {
	in := "line1\nline2\r\nline3"
	escaped := EscapeNewlines(in)
	if strings.Contains(escaped, "\n") {
		t.Errorf("Escaped string still contains a real newline: %q", escaped)
	}
	if got := UnescapeNewlines(escaped); got != "line1\nline2\nline3" {
		t.Errorf("Round trip mismatch: %q", got)
	}
}

func TestFlatten_ArrayJoinedWithEscape(t *testing.T) {
	v := mustDecode(t, `{"a": "x", "b": ["p", "q"]}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{}).Flatten(v)

	if got, _ := row.Get("a"); got != "x" {
		t.Errorf(`Expected a="x", got %q`, got)
	}
	if got, _ := row.Get("b"); got != `p\nq` {
		t.Errorf(`Expected b="p\n q" joined form, got %q`, got)
	}
}

func TestFlatten_ArrayElementsRecoverable(t *testing.T) {
	v := mustDecode(t, `{"items": ["first\nsecond", "third"]}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{}).Flatten(v)

	cell, _ := row.Get("items")
	parts := strings.Split(cell, `\n`)
	// The embedded newline and the element separator share the escape; the
	// split recovers three segments, a documented limitation of the format.
	if len(parts) != 3 {
		t.Errorf("Expected 3 segments, got %d: %v", len(parts), parts)
	}
}

func TestFlatten_UniqueKeyUnsuffixed(t *testing.T) {
	v := mustDecode(t, `{"name": "solo"}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{}).Flatten(v)

	if !row.Has("name") {
		t.Errorf("Expected plain column name, got %v", row.Columns())
	}
}

func TestFlatten_RepeatedKeyAcrossBatch(t *testing.T) {
	a := mustDecode(t, `{"name": "first"}`)
	b := mustDecode(t, `{"name": "second"}`)
	batch := []jsonval.Value{a, b}

	ix := NewIndex(batch)
	f := New(ix, Options{})
	rows := []*Row{f.Flatten(a), f.Flatten(b)}

	if !rows[0].Has("name_1") {
		t.Errorf("First row: expected name_1, got %v", rows[0].Columns())
	}
	if !rows[1].Has("name_2") {
		t.Errorf("Second row: expected name_2, got %v", rows[1].Columns())
	}

	_, table := Reconcile(rows, MergeOverwrite)
	if v := table[0]["name_1"]; v != "first" {
		t.Errorf("Merged name_1: expected %q, got %q", "first", v)
	}
	if v := table[0]["name_2"]; v != "second" {
		t.Errorf("Merged name_2: expected %q, got %q", "second", v)
	}
}

func TestFlatten_SuffixAlways(t *testing.T) {
	v := mustDecode(t, `{"name": "solo"}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{Suffix: SuffixAlways}).Flatten(v)

	if !row.Has("name_1") {
		t.Errorf("Expected name_1 under always-suffix policy, got %v", row.Columns())
	}
}

func TestFlatten_NestedObjectFlatNamespace(t *testing.T) {
	v := mustDecode(t, `{"outer": {"inner": "deep"}, "top": "t"}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{}).Flatten(v)

	if got, _ := row.Get("inner"); got != "deep" {
		t.Errorf("Expected nested key without path prefix, got columns %v", row.Columns())
	}
	if row.Has("outer") {
		t.Errorf("Container key should not become a column: %v", row.Columns())
	}
	if got, _ := row.Get("top"); got != "t" {
		t.Errorf("Expected top=t, got %q", got)
	}
}

func TestFlatten_NullRendersEmpty(t *testing.T) {
	v := mustDecode(t, `{"gone": null}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{}).Flatten(v)

	if got, ok := row.Get("gone"); !ok || got != "" {
		t.Errorf("Expected empty string for null, got %q (present=%v)", got, ok)
	}
}

func TestFlatten_HierarchyMarkers(t *testing.T) {
	v := mustDecode(t, `{
		"report_change": "up",
		"section_title": "Intro",
		"section_summary": "s1",
		"sub_section_title": "Sub A",
		"sub_section_summary": "sub s1",
		"Section Title": "Methods",
		"section_summary": "s2",
		"sub_section_title": "Sub B",
		"sub_section_summary": "sub s2"
	}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{Hierarchy: true}).Flatten(v)

	checks := map[string]string{
		"report_change":           "up",
		"section_title_1":         "Intro",
		"section_summary_1":       "s1",
		"sub_section_title_1.1":   "Sub A",
		"sub_section_summary_1.1": "sub s1",
		"section_title_2":         "Methods",
		"section_summary_2":       "s2",
		"sub_section_title_2.1":   "Sub B",
		"sub_section_summary_2.1": "sub s2",
	}
	for col, want := range checks {
		got, ok := row.Get(col)
		if !ok {
			t.Errorf("Missing column %q (have %v)", col, row.Columns())
			continue
		}
		if got != want {
			t.Errorf("Column %q: expected %q, got %q", col, want, got)
		}
	}
}

func TestFlatten_SubCounterResetsPerSection(t *testing.T) {
	v := mustDecode(t, `{
		"section_title": "One",
		"sub_section_title": "1a",
		"sub_section_title": "1b",
		"section_title": "Two",
		"sub_section_title": "2a"
	}`)
	ix := NewIndex([]jsonval.Value{v})
	row := New(ix, Options{Hierarchy: true}).Flatten(v)

	for _, col := range []string{"sub_section_title_1.1", "sub_section_title_1.2", "sub_section_title_2.1"} {
		if !row.Has(col) {
			t.Errorf("Missing column %q (have %v)", col, row.Columns())
		}
	}
}

func TestReconcile_FirstSeenColumnOrder(t *testing.T) {
	r1 := NewRow()
	r1.Set("b", "1")
	r1.Set("a", "2")
	r2 := NewRow()
	r2.Set("c", "3")
	r2.Set("a", "4")

	columns, table := Reconcile([]*Row{r1, r2}, MergeAppend)

	want := []string{"b", "a", "c"}
	if len(columns) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, columns)
	}
	for i := range want {
		if columns[i] != want[i] {
			t.Errorf("Column %d: expected %q, got %q", i, want[i], columns[i])
		}
	}

	if len(table) != 2 {
		t.Fatalf("Append mode: expected 2 rows, got %d", len(table))
	}
	if table[0]["c"] != "" {
		t.Errorf("Missing column should pad with empty string, got %q", table[0]["c"])
	}
}

func TestReconcile_MergeOverwrite(t *testing.T) {
	r1 := NewRow()
	r1.Set("k", "old")
	r2 := NewRow()
	r2.Set("k", "new")

	columns, table := Reconcile([]*Row{r1, r2}, MergeOverwrite)
	if len(table) != 1 {
		t.Fatalf("Merge mode: expected 1 row, got %d", len(table))
	}
	if len(columns) != 1 || columns[0] != "k" {
		t.Errorf("Expected single column k, got %v", columns)
	}
	if table[0]["k"] != "new" {
		t.Errorf("Overwrite: expected last value to win, got %q", table[0]["k"])
	}
}

func TestReconcile_MergeDisambiguate(t *testing.T) {
	r1 := NewRow()
	r1.Set("k", "first")
	r2 := NewRow()
	r2.Set("k", "second")
	r3 := NewRow()
	r3.Set("k", "third")

	columns, table := Reconcile([]*Row{r1, r2, r3}, MergeDisambiguate)
	if len(table) != 1 {
		t.Fatalf("Merge mode: expected 1 row, got %d", len(table))
	}

	want := map[string]string{"k": "first", "k_2": "second", "k_3": "third"}
	for col, val := range want {
		if table[0][col] != val {
			t.Errorf("Column %q: expected %q, got %q", col, val, table[0][col])
		}
	}
	if len(columns) != 3 {
		t.Errorf("Expected 3 columns, got %v", columns)
	}
}

func TestReconcile_Empty(t *testing.T) {
	columns, table := Reconcile(nil, MergeAppend)
	if len(columns) != 0 || len(table) != 0 {
		t.Errorf("Expected empty result, got %v / %v", columns, table)
	}
}
