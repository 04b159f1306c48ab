// Package sheet serialises tables to and from the two sheet formats the
// pipeline exchanges: CSV for plain text sinks and XLSX workbooks for
// spreadsheet consumers. Format selection follows the file extension, and
// [OutputName] implements the reproducible output-file naming convention.
//
// Null cells encode as empty CSV fields and as absent XLSX cells; decoding
// cannot distinguish the two, so decoded cells are always valid.
package sheet
