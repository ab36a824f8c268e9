// Package extract turns raw rendered page content into discrete
// proceedings entries using a fixed order of fallback heuristics.
package extract

import (
	"strings"

	"go.uber.org/zap"
)

// dedupPrefixLen is the number of leading characters compared when deciding
// whether two entries describe the same listing.
const dedupPrefixLen = 100

// Entry is one candidate proceedings listing, identified only by its text.
type Entry struct {
	Text string
}

// Config controls the token sets and thresholds used by the strategies.
type Config struct {
	// YearTokens are matched case-sensitively anywhere in an entry.
	YearTokens []string
	// ConferenceTokens are matched case-insensitively.
	ConferenceTokens []string
	// SectionPhrase is the case-sensitive text that marks the proceedings
	// section anchor element.
	SectionPhrase string
	// SectionHrefToken is matched case-insensitively against link targets.
	SectionHrefToken string
	// MinElementTextLen filters out navigation fragments and headers.
	MinElementTextLen int
}

// DefaultConfig returns the token sets for the IEEE ICONAT proceedings page.
func DefaultConfig() Config {
	return Config{
		YearTokens: []string{"2022", "2023", "2024", "2025"},
		ConferenceTokens: []string{
			"iconat",
			"international conference",
			"conference for advancement",
			"advancement in technology",
		},
		SectionPhrase:     "All Proceedings",
		SectionHrefToken:  "all-proceedings",
		MinElementTextLen: 20,
	}
}

// Extractor applies the extraction strategies in priority order.
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

// New constructs an Extractor. A nil logger is replaced with a no-op logger.
func New(cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract runs the strategies against the page content and returns the
// de-duplicated entries in first-seen order. Strategies run in priority
// order and extraction stops at the first strategy that yields anything.
// Empty output is a normal outcome, never an error.
func (e *Extractor) Extract(content string) []Entry {
	if strings.TrimSpace(content) == "" {
		e.logger.Debug("empty page content, nothing to extract")
		return nil
	}

	strategies := []struct {
		name string
		run  func(string) []Entry
	}{
		{name: "line-proximity", run: e.lineProximity},
		{name: "structural-elements", run: e.structuralElements},
		{name: "section-scoped", run: e.sectionScoped},
	}

	var found []Entry
	for _, s := range strategies {
		entries := s.run(content)
		e.logger.Debug("strategy finished",
			zap.String("strategy", s.name),
			zap.Int("entries", len(entries)),
		)
		found = append(found, entries...)
		if len(found) > 0 {
			break
		}
	}

	unique := dedupe(found)
	if len(unique) == 0 {
		e.logger.Info("no proceedings entries found in page content")
	}
	return unique
}

// dedupe collapses entries whose lowercased 100-character prefixes match,
// keeping the first occurrence.
func dedupe(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		key := dedupeKey(entry.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}
	return out
}

func dedupeKey(text string) string {
	runes := []rune(text)
	if len(runes) > dedupPrefixLen {
		runes = runes[:dedupPrefixLen]
	}
	return strings.ToLower(string(runes))
}

func (e *Extractor) hasYearToken(text string) bool {
	for _, year := range e.cfg.YearTokens {
		if strings.Contains(text, year) {
			return true
		}
	}
	return false
}

func (e *Extractor) hasConferenceToken(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range e.cfg.ConferenceTokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}
