package sheet

import (
	"strings"
	"testing"
	"time"

	"github.com/edlowe/flatsheet/core/table"
)

func sampleTable() *table.Table {
	t := table.New([]string{"a", "b", "c"})
	t.AppendRow(map[string]table.Cell{
		"a": table.String("1"),
		"b": table.String(""),
		// c intentionally null
	})
	t.AppendRow(map[string]table.Cell{
		"a": table.String("x"),
		"b": table.String("y"),
		"c": table.String("z"),
	})
	return t
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"report.csv", FormatCSV},
		{"report.TXT", FormatCSV},
		{"report.tsv", FormatCSV},
		{"report.xlsx", FormatXLSX},
		{"report.xls", FormatXLSX},
		{"report", FormatXLSX},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.name); got != tt.want {
			t.Errorf("FormatFor(%q): expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	data, err := EncodeCSV(sampleTable())
	if err != nil {
		t.Fatalf("EncodeCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "a,b,c" {
		t.Errorf("Unexpected header: %q", lines[0])
	}

	decoded, err := DecodeCSV(data)
	if err != nil {
		t.Fatalf("DecodeCSV failed: %v", err)
	}
	if len(decoded.Columns) != 3 || len(decoded.Rows) != 2 {
		t.Fatalf("Decoded shape mismatch: %d cols, %d rows", len(decoded.Columns), len(decoded.Rows))
	}
	if got := decoded.Get(1, "c").Value; got != "z" {
		t.Errorf("Expected z, got %q", got)
	}
	// Null encoded as empty field; decodes back as a valid empty cell.
	if c := decoded.Get(0, "c"); !c.Valid || c.Value != "" {
		t.Errorf("Expected valid empty cell after round trip, got %+v", c)
	}
}

func TestXLSX_RoundTrip(t *testing.T) {
	data, err := EncodeXLSX(sampleTable())
	if err != nil {
		t.Fatalf("EncodeXLSX failed: %v", err)
	}

	decoded, err := DecodeXLSX(data)
	if err != nil {
		t.Fatalf("DecodeXLSX failed: %v", err)
	}
	if len(decoded.Columns) != 3 {
		t.Fatalf("Expected 3 columns, got %v", decoded.Columns)
	}
	if len(decoded.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(decoded.Rows))
	}
	if got := decoded.Get(1, "b").Value; got != "y" {
		t.Errorf("Expected y, got %q", got)
	}
}

func TestEncodeDecode_ByExtension(t *testing.T) {
	tbl := sampleTable()

	csvData, err := Encode("out.csv", tbl)
	if err != nil {
		t.Fatalf("Encode csv failed: %v", err)
	}
	if _, err := DecodeCSV(csvData); err != nil {
		t.Errorf("csv output not parseable as csv: %v", err)
	}

	xlsxData, err := Encode("out.xlsx", tbl)
	if err != nil {
		t.Fatalf("Encode xlsx failed: %v", err)
	}
	if _, err := Decode("out.xlsx", xlsxData); err != nil {
		t.Errorf("xlsx output not parseable: %v", err)
	}
}

func TestTimestampToken(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)

	tests := []struct {
		source string
		want   string
	}{
		{"JSON_input_file_20250114_093000.txt", "20250114_093000"},
		{"JSON_input_file_14-01-2025.txt", "14-01-2025"},
		{"plain.txt", "20250309_143005"},
		{"", "20250309_143005"},
	}
	for _, tt := range tests {
		if got := TimestampToken(tt.source, now); got != tt.want {
			t.Errorf("TimestampToken(%q): expected %q, got %q", tt.source, tt.want, got)
		}
	}
}

func TestOutputName(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)

	got := OutputName("csv", "JSON_input_file_14-01-2025.txt", "csv", now)
	want := "csv_output_file_14-01-2025.csv"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got = OutputName("csv", "input.txt", ".csv", now)
	want = "csv_output_file_20250309_143005.csv"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
