package importer

import (
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// TextLine is a non-blank line and its 1-based position in the file.
type TextLine struct {
	Number int
	Text   string
}

// SplitNumberedLines splits text into lines and drops blank ones, keeping
// the original line numbers for error reports.
func SplitNumberedLines(text string) []TextLine {
	parts := lineBreak.Split(text, -1)
	lines := make([]TextLine, 0, len(parts))
	for i, p := range parts {
		if strings.TrimSpace(p) != "" {
			lines = append(lines, TextLine{Number: i + 1, Text: p})
		}
	}
	return lines
}

// SplitLines splits text into lines and drops blank ones.
func SplitLines(text string) []string {
	numbered := SplitNumberedLines(text)
	lines := make([]string, len(numbered))
	for i, l := range numbered {
		lines[i] = l.Text
	}
	return lines
}

// DetectDelimiter picks ';' when the line has one and ',' otherwise. It is
// evaluated per line, so a file may mix delimiters.
func DetectDelimiter(line string) rune {
	if strings.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

// ParseLine splits one CSV line. Delimiters inside double quotes are kept,
// "" inside quotes is a literal quote, and an unterminated quote swallows
// the rest of the line into the last field instead of failing.
func ParseLine(line string) []string {
	delim := DetectDelimiter(line)
	runes := []rune(line)

	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}
