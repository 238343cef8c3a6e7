package facts

import (
	"regexp"
	"strings"
)

// enumMarker matches a leading "1." or "2)" list marker.
var enumMarker = regexp.MustCompile(`^\d+[.)]\s*`)

// ParseLines splits generated text into facts: one per non-empty line, with
// list markers stripped. At most limit facts are returned when limit > 0.
func ParseLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(enumMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
