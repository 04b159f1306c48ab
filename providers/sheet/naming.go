package sheet

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// The two timestamp shapes that appear in source filenames: a compact
// instant ("20250114_093000") and the ingestion date ("14-01-2025").
var (
	compactTokenRE = regexp.MustCompile(`\d{8}_\d{6}`)
	dateTokenRE    = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
)

const compactTokenLayout = "20060102_150405"

// TimestampToken derives the timestamp token for an output filename: the
// token embedded in the source filename when one is present, otherwise now
// in UTC. Given a fixed clock the result is reproducible.
func TimestampToken(source string, now time.Time) string {
	if m := compactTokenRE.FindString(source); m != "" {
		return m
	}
	if m := dateTokenRE.FindString(source); m != "" {
		return m
	}
	return now.UTC().Format(compactTokenLayout)
}

// OutputName builds the conventional output filename
// "<kind>_output_file_<token>.<ext>" for the given source file.
func OutputName(kind, source, ext string, now time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s_output_file_%s.%s", kind, TimestampToken(source, now), ext)
}
