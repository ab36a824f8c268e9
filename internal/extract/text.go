package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// flattenLines renders the page content as trimmed, non-empty text lines.
// Markup is reduced to its visible text; content that does not parse as
// HTML degrades to a plain line split of the raw input.
func flattenLines(content string) []string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return splitLines(content)
	}
	var sb strings.Builder
	collectText(root, &sb)
	flattened := splitLines(sb.String())
	if len(flattened) == 0 {
		return splitLines(content)
	}
	return flattened
}

func collectText(n *html.Node, sb *strings.Builder) {
	if skipElement(n) {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte('\n')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// elementText extracts the visible text of a selection, separating text
// nodes with single spaces so tokens split across inline elements stay
// distinguishable.
func elementText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectNodeText(n, &parts)
	}
	return normalizeSpace(strings.Join(parts, " "))
}

func collectNodeText(n *html.Node, parts *[]string) {
	if skipElement(n) {
		return
	}
	if n.Type == html.TextNode {
		if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
			*parts = append(*parts, trimmed)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNodeText(c, parts)
	}
}

func skipElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "head":
		return true
	}
	return false
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = normalizeSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
