package importer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxDescriptionRunes = 2000
	shortDescRunes      = 200
)

var manyNewlines = regexp.MustCompile(`\n{3,}`)

// CleanDescription turns an HTML or plain description into plain text with
// paragraph breaks kept.
func CleanDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("br").ReplaceWithHtml("\n")
			doc.Find("p, li, div, h1, h2, h3, h4, h5, h6, tr").AppendHtml("\n")
			s = doc.Text()
		}
	}

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = cleanCell(l)
	}
	s = manyNewlines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return truncateRunes(strings.TrimSpace(s), maxDescriptionRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
