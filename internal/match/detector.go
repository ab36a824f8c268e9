// Package match decides whether an extracted entry announces the target
// publication.
package match

import (
	"strings"

	"github.com/abhinayb/pubwatch/internal/extract"
)

// Detector scans entries for one that carries both the target year and the
// target keyword.
type Detector struct {
	year    string
	keyword string
}

// New constructs a Detector for the given year and keyword tokens. The year
// is matched case-sensitively, the keyword case-insensitively.
func New(year, keyword string) *Detector {
	return &Detector{
		year:    year,
		keyword: strings.ToLower(keyword),
	}
}

// FindMatch returns the first entry, in sequence order, whose text contains
// both tokens. Both tokens must appear in the same entry. The boolean is
// false when no entry qualifies.
func (d *Detector) FindMatch(entries []extract.Entry) (extract.Entry, bool) {
	for _, entry := range entries {
		if !strings.Contains(entry.Text, d.year) {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Text), d.keyword) {
			return entry, true
		}
	}
	return extract.Entry{}, false
}
