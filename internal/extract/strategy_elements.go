package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuralContentSelector covers the node types proceedings listings are
// typically rendered into.
const structuralContentSelector = "li, div, p, span, article"

// structuralElements walks the structural content nodes of the document and
// keeps every node whose text is substantial and carries both a year token
// and a conference token.
func (e *Extractor) structuralElements(content string) []Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var entries []Entry
	doc.Find(structuralContentSelector).Each(func(_ int, sel *goquery.Selection) {
		text := elementText(sel)
		if len(text) <= e.cfg.MinElementTextLen {
			return
		}
		if e.hasYearToken(text) && e.hasConferenceToken(text) {
			entries = append(entries, Entry{Text: text})
		}
	})
	return entries
}
