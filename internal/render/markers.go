// Package render turns analysis results into terminal, JSON and Markdown output.
package render

import (
	"strconv"
	"strings"

	"github.com/ppiankov/umactually/internal/align"
	"github.com/ppiankov/umactually/internal/model"
	"golang.org/x/net/html"
)

const (
	markerClass    = "marker"
	claimIndexAttr = "data-claim-index"
)

// Marker is a clickable claim inside analyzed content
type Marker struct {
	Index int
	Text  string
}

// Markers returns the claim markers in document order. Elements with the
// marker class or a data-claim-index attribute count; markers without a
// parsable index are numbered by position.
func Markers(content string) []Marker {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var markers []Marker
	walkMarkers(doc, func(n *html.Node, index int) {
		markers = append(markers, Marker{Index: index, Text: collapse(textOf(n))})
	})
	return markers
}

// ResolveMarker returns the source group behind a clicked marker
func ResolveMarker(result model.AnalysisResult, m Marker) (model.SourceGroup, bool) {
	return align.SourcesFor(result.SourceGroups, m.Index)
}

// walkMarkers calls fn for each marker element with its resolved index
func walkMarkers(doc *html.Node, fn func(n *html.Node, index int)) {
	seq := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if index, ok := markerIndex(n, seq); ok {
				fn(n, index)
				seq++
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

func markerIndex(n *html.Node, seq int) (int, bool) {
	isMarker := false
	index := seq
	for _, attr := range n.Attr {
		switch attr.Key {
		case claimIndexAttr:
			isMarker = true
			if v, err := strconv.Atoi(strings.TrimSpace(attr.Val)); err == nil && v >= 0 {
				index = v
			}
		case "class":
			for _, class := range strings.Fields(attr.Val) {
				if class == markerClass {
					isMarker = true
				}
			}
		}
	}
	return index, isMarker
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
