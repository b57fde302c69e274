package tvmaze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText flattens the HTML fragments TVmaze uses for summaries.
// Paragraphs and list items are separated by a single space.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var parts []string
	blocks := doc.Find("p, li")
	if blocks.Length() > 0 {
		blocks.Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
	} else {
		parts = append(parts, doc.Text())
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func (s Show) PlainSummary() string {
	return PlainText(s.Summary)
}
