// Package jsonval defines the closed JSON value model used by the conversion
// engine. A [Value] is a tagged variant over the six JSON kinds; object
// members keep their source order and numbers keep their source literal, both
// of which the downstream flattening stages depend on (column order is
// first-seen order, and number rendering must be byte-stable).
//
// The main entry point is [Decode], which parses one JSON value from text.
package jsonval
