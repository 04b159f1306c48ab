// Package extract scans loosely structured text — typically LLM-generated
// report output — and yields the JSON objects embedded in it.
//
// The scanner tolerates the noise such text usually carries: multi-line
// brace-balanced blocks, trailing commas between top-level objects, blocks
// accidentally wrapped together in an array, and runs of bare "key": value
// lines that were never wrapped in braces. Blocks that fail strict parsing
// get one automatic repair attempt (via jsonrepair) before being skipped.
// A parse failure never aborts the scan; it is recorded as a [Warning] and
// extraction continues.
//
// The main entry point is [Extract].
package extract
