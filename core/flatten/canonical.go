package flatten

import "strings"

// Canonical normalises a JSON object key into the form used for column
// naming and pattern matching: lower case, surrounding whitespace trimmed,
// interior spaces and hyphens replaced with underscores, and runs of
// underscores collapsed to one.
func Canonical(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-':
			return '_'
		}
		return r
	}, k)

	for strings.Contains(k, "__") {
		k = strings.ReplaceAll(k, "__", "_")
	}
	return k
}

// EscapeNewlines replaces real newline characters with the literal
// two-character sequence `\n`, so multi-line content survives a single-line
// table cell. Carriage returns are dropped first so CRLF input collapses to
// the same escape. Round-tripping is lossless for newlines specifically;
// input that already contains a literal `\n` is ambiguous, an accepted
// limitation.
func EscapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}

// UnescapeNewlines is the inverse of [EscapeNewlines].
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
