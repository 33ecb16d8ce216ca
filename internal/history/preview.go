package history

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// PreviewLimit is the maximum number of visible runes in a preview
const PreviewLimit = 80

// Preview derives the sidebar summary for content: markup stripped, whitespace
// collapsed, truncated to PreviewLimit runes with "..." appended when cut.
func Preview(content string) string {
	text := visibleText(content)
	if utf8.RuneCountInString(text) <= PreviewLimit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:PreviewLimit])) + "..."
}

// visibleText extracts text nodes from markup, skipping scripts and styles
func visibleText(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var buf strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(buf.String()), " ")
		case html.StartTagToken:
			if isHiddenTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isHiddenTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
				buf.WriteString(" ")
			}
		}
	}
}

func isHiddenTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "noscript", "iframe":
		return true
	}
	return false
}
