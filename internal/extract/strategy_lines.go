package extract

import (
	"strings"
)

// Line absorption limits for the line-proximity strategy.
const (
	maxAbsorbedLines    = 2
	continuationMaxLen  = 100
	leadingDigitScanLen = 10
)

// lineProximity scans the flattened line-by-line text of the page. A line
// that already carries both a year token and a conference token anchors an
// entry; up to two following lines are absorbed while they look like
// continuations of the same listing.
func (e *Extractor) lineProximity(content string) []Entry {
	lines := flattenLines(content)

	var entries []Entry
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !e.hasYearToken(line) || !e.hasConferenceToken(line) {
			continue
		}
		parts := []string{line}
		absorbed := 0
		for j := i + 1; j < len(lines) && absorbed < maxAbsorbedLines; j++ {
			if !looksLikeContinuation(lines[j]) {
				break
			}
			parts = append(parts, lines[j])
			absorbed++
		}
		i += absorbed
		entries = append(entries, Entry{Text: strings.Join(parts, " ")})
	}
	return entries
}

// looksLikeContinuation reports whether a lookahead line plausibly belongs
// to the entry started on the anchor line above it.
func looksLikeContinuation(line string) bool {
	if strings.Contains(strings.ToLower(line), "location") {
		return true
	}
	if len(line) < continuationMaxLen {
		return true
	}
	limit := leadingDigitScanLen
	if len(line) < limit {
		limit = len(line)
	}
	for _, r := range line[:limit] {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
