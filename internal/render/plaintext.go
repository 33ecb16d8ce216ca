package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips all markup from content and normalizes whitespace
func PlainText(content string) string {
	return collapse(html.UnescapeString(strictPolicy.Sanitize(content)))
}

// Annotated returns content as plain text with each claim marker followed
// by its 1-based reference, e.g. "the sky is blue [1]". mark styles the
// marker text and may be nil.
func Annotated(content string, mark func(string) string) string {
	doc, err := nethtml.Parse(strings.NewReader(content))
	if err != nil {
		return PlainText(content)
	}

	markers := make(map[*nethtml.Node]int)
	walkMarkers(doc, func(n *nethtml.Node, index int) { markers[n] = index })

	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if index, ok := markers[n]; ok {
			text := collapse(textOf(n))
			if mark != nil {
				text = mark(text)
			}
			fmt.Fprintf(&b, " %s [%d] ", text, index+1)
			return
		}
		switch n.Type {
		case nethtml.TextNode:
			b.WriteString(n.Data)
		case nethtml.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4":
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tidyPunctuation(collapse(b.String()))
}

// tidyPunctuation removes the space the marker padding leaves before punctuation
func tidyPunctuation(s string) string {
	for _, p := range []string{".", ",", ";", ":", "!", "?"} {
		s = strings.ReplaceAll(s, "] "+p, "]"+p)
	}
	return s
}
