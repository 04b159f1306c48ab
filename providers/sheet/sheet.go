package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/edlowe/flatsheet/core/table"
)

// Format identifies a sheet serialisation.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the serialisation for a file path by extension. CSV-like
// text extensions map to CSV; everything else defaults to an XLSX workbook.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV
	default:
		return FormatXLSX
	}
}

// Encode serialises t in the format implied by name.
func Encode(name string, t *table.Table) ([]byte, error) {
	if FormatFor(name) == FormatCSV {
		return EncodeCSV(t)
	}
	return EncodeXLSX(t)
}

// Decode parses data in the format implied by name.
func Decode(name string, data []byte) (*table.Table, error) {
	if FormatFor(name) == FormatCSV {
		return DecodeCSV(data)
	}
	return DecodeXLSX(data)
}

// EncodeCSV writes a header row followed by the data rows. Null cells become
// empty fields.
func EncodeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range row {
			if c.Valid {
				record[i] = c.Value
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses a header row plus data rows. Short records are padded so
// every row covers every column.
func DecodeCSV(data []byte) (*table.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return table.New(nil), nil
	}

	t := table.New(records[0])
	for _, rec := range records[1:] {
		cells := make(map[string]table.Cell, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				cells[col] = table.String(rec[i])
			} else {
				cells[col] = table.String("")
			}
		}
		t.AppendRow(cells)
	}
	return t, nil
}

const defaultSheetName = "Sheet1"

// EncodeXLSX writes t as a single-sheet workbook. Null cells are left unset.
func EncodeXLSX(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(defaultSheetName, cell, col); err != nil {
			return nil, fmt.Errorf("set header cell: %w", err)
		}
	}

	for r, row := range t.Rows {
		for i, c := range row {
			if !c.Valid {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(defaultSheetName, cell, c.Value); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeXLSX parses the first sheet of a workbook: header row, then data.
func DecodeXLSX(data []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.New(nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read workbook rows: %w", err)
	}
	if len(rows) == 0 {
		return table.New(nil), nil
	}

	t := table.New(rows[0])
	for _, rec := range rows[1:] {
		cells := make(map[string]table.Cell, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				cells[col] = table.String(rec[i])
			} else {
				cells[col] = table.String("")
			}
		}
		t.AppendRow(cells)
	}
	return t, nil
}
