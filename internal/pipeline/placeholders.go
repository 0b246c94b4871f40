package pipeline

import (
	"regexp"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Math placeholder element produced for every marker found in text.
const (
	MathPlaceholderClass = "math-placeholder"
	MathIndexAttr        = "data-math-index"
)

var mathMarker = regexp.MustCompile(MathStartMarker + `(\d+)` + MathEndMarker)

// expandMathMarkers replaces markers inside text nodes with empty
// placeholder elements carrying the expression index. Markers that ended up
// in attribute values are left for the view to resolve.
func expandMathMarkers(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			splitMarkers(c)
		} else {
			expandMathMarkers(c)
		}
		c = next
	}
}

// splitMarkers replaces text node t with alternating text and placeholder nodes.
func splitMarkers(t *html.Node) {
	locs := mathMarker.FindAllStringSubmatchIndex(t.Data, -1)
	if len(locs) == 0 {
		return
	}
	parent := t.Parent
	text := t.Data
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:loc[0]]}, t)
		}
		index, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			// Leave the marker in place as text; the view reports it.
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[loc[0]:loc[1]]}, t)
		} else {
			parent.InsertBefore(MathPlaceholder(index), t)
		}
		last = loc[1]
	}
	if last < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:]}, t)
	}
	parent.RemoveChild(t)
}

// MathPlaceholder builds the placeholder element for expression index.
func MathPlaceholder(index int) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr: []html.Attribute{
			{Key: "class", Val: MathPlaceholderClass},
			{Key: MathIndexAttr, Val: strconv.Itoa(index)},
		},
	}
}

// ReplaceMarkers substitutes every math marker in s with replace(index).
// Used for markers that ended up in attribute values.
func ReplaceMarkers(s string, replace func(index int) string) string {
	return mathMarker.ReplaceAllStringFunc(s, func(m string) string {
		sub := mathMarker.FindStringSubmatch(m)
		index, err := strconv.Atoi(sub[1])
		if err != nil {
			return m
		}
		return replace(index)
	})
}
