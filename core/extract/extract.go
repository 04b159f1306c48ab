package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/edlowe/flatsheet/core/jsonval"
)

// Warning records one discarded fragment. Extraction never aborts on a bad
// fragment; callers decide whether warnings matter.
type Warning struct {
	// Line is the 1-based line number where the discarded fragment started.
	Line int
	// Reason describes why the fragment was skipped.
	Reason string
	// Snippet is a short prefix of the discarded text.
	Snippet string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Reason, w.Snippet)
}

const snippetLen = 80

// looseLineRE matches a bare `"key": value` line outside any brace block.
// Best effort: values containing unbalanced quotes or stray commas may still
// fail to parse once the run is wrapped; such runs are discarded with a
// warning rather than guessed at.
var looseLineRE = regexp.MustCompile(`^\s*"(?:[^"\\]|\\.)+"\s*:\s*\S.*$`)

// Extract scans text line by line and returns every JSON object it can
// recover, in order of appearance, along with warnings for fragments that
// could not be parsed. An empty result is not an error here; callers treat
// zero objects as their own failure condition.
func Extract(text string) ([]jsonval.Value, []Warning) {
	s := scanner{}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lineNo := i + 1

		if s.inBlock {
			s.block = append(s.block, line)
			s.depth += braceDelta(line)
			if s.depth <= 0 {
				s.finishBlock(true)
			}
			continue
		}

		if strings.Contains(line, "{") {
			s.flushLoose()
			s.inBlock = true
			s.blockStart = lineNo
			s.block = append(s.block[:0], line)
			s.depth = braceDelta(line)
			if s.depth <= 0 {
				s.finishBlock(true)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			s.flushLoose()
			continue
		}

		if looseLineRE.MatchString(line) {
			if len(s.loose) == 0 {
				s.looseStart = lineNo
			}
			s.loose = append(s.loose, line)
		}
		// Other prose lines are ignored; they neither join nor close a run.
	}

	// End of input closes whatever is still open, same rules as a blank
	// line. An unterminated block never balanced its braces, so it gets no
	// repair attempt: repair is reserved for blocks that actually closed.
	if s.inBlock {
		s.finishBlock(false)
	}
	s.flushLoose()

	return s.values, s.warnings
}

type scanner struct {
	values   []jsonval.Value
	warnings []Warning

	inBlock    bool
	depth      int
	block      []string
	blockStart int

	loose      []string
	looseStart int
}

// finishBlock parses the accumulated brace block. One trailing comma is
// stripped first (top-level objects often arrive comma-joined). When
// allowRepair is set, a strict parse failure gets one jsonrepair attempt
// before the block is skipped.
func (s *scanner) finishBlock(allowRepair bool) {
	block := strings.TrimSpace(strings.Join(s.block, "\n"))
	s.inBlock = false
	s.depth = 0
	s.block = s.block[:0]

	block = strings.TrimSuffix(block, ",")
	if block == "" {
		return
	}

	v, err := jsonval.Decode(block)
	if err != nil {
		if !allowRepair {
			s.warn(s.blockStart, fmt.Sprintf("unterminated block (%v)", err), block)
			return
		}
		repaired, repairErr := jsonrepair.JSONRepair(block)
		if repairErr != nil {
			s.warn(s.blockStart, fmt.Sprintf("unparseable block (%v; repair failed: %v)", err, repairErr), block)
			return
		}
		v, err = jsonval.Decode(repaired)
		if err != nil {
			s.warn(s.blockStart, fmt.Sprintf("unparseable block after repair (%v)", err), block)
			return
		}
	}

	s.emit(v, s.blockStart)
}

// flushLoose wraps a buffered run of bare "key": value lines in synthetic
// braces and parses it as one object. No repair pass: the heuristic is
// best effort and failed runs are discarded with a warning.
func (s *scanner) flushLoose() {
	if len(s.loose) == 0 {
		return
	}
	run := strings.TrimSpace(strings.Join(s.loose, "\n"))
	start := s.looseStart
	s.loose = s.loose[:0]

	run = strings.TrimSuffix(run, ",")
	wrapped := "{\n" + run + "\n}"

	v, err := jsonval.Decode(wrapped)
	if err != nil {
		s.warn(start, fmt.Sprintf("unparseable loose key/value run (%v)", err), run)
		return
	}
	s.emit(v, start)
}

// emit records a parsed value. Objects are emitted directly; arrays are the
// recovery path for blocks accidentally wrapped together, so each object
// element is emitted individually. Anything else is skipped with a warning.
func (s *scanner) emit(v jsonval.Value, line int) {
	switch v.Kind() {
	case jsonval.Object:
		s.values = append(s.values, v)
	case jsonval.Array:
		found := false
		for _, elem := range v.Elements() {
			if elem.IsObject() {
				s.values = append(s.values, elem)
				found = true
			}
		}
		if !found {
			s.warn(line, "array block contains no objects", v.EncodeJSON())
		}
	default:
		s.warn(line, "parsed value is not an object", v.EncodeJSON())
	}
}

func (s *scanner) warn(line int, reason, text string) {
	snippet := text
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	s.warnings = append(s.warnings, Warning{Line: line, Reason: reason, Snippet: snippet})
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}
