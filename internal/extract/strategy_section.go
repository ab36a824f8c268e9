package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	sectionAnchorSelector = "h1, h2, h3, h4, h5, h6, a, button"
	sectionItemSelector   = "li, div, p"
)

// sectionScoped locates the proceedings section via its heading, link, or
// button and collects substantial year-bearing nodes from the enclosing
// container. The section scope stands in for the conference-token check the
// other strategies require.
func (e *Extractor) sectionScoped(content string) []Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	container := e.findSectionContainer(doc)
	if container == nil || container.Length() == 0 {
		return nil
	}

	var entries []Entry
	container.Find(sectionItemSelector).Each(func(_ int, sel *goquery.Selection) {
		text := elementText(sel)
		if len(text) <= e.cfg.MinElementTextLen {
			return
		}
		if e.hasYearToken(text) {
			entries = append(entries, Entry{Text: text})
		}
	})
	return entries
}

func (e *Extractor) findSectionContainer(doc *goquery.Document) *goquery.Selection {
	var container *goquery.Selection
	doc.Find(sectionAnchorSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(elementText(sel), e.cfg.SectionPhrase) {
			container = sel.Parent()
			return false
		}
		if href, ok := sel.Attr("href"); ok {
			if strings.Contains(strings.ToLower(href), strings.ToLower(e.cfg.SectionHrefToken)) {
				container = sel.Parent()
				return false
			}
		}
		return true
	})
	return container
}
