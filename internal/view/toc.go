package view

import (
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdview/internal/pipeline"
)

// Side panel markup.
const (
	SidebarClass = "toc-sidebar"
	TOCTitle     = "Table of Contents"
	HasTOCClass  = "has-toc" // body class while a panel is shown
)

// headingSelector matches every heading level.
const headingSelector = "h1, h2, h3, h4, h5, h6"

// TocEntry is one heading listed in the side panel.
type TocEntry struct {
	Level    int    `json:"level"`
	AnchorID string `json:"anchorId"`
	Label    string `json:"label"`
}

// GenerateTOC assigns heading-<index> ids to headings without one and
// renders the side panel at the end of the root. With no headings it does
// nothing and returns nil. A panel left by an earlier run is replaced.
// Math placeholders in headings are listed as their delimited source from
// math, since the panel is built before formulas are typeset.
func GenerateTOC(s *State, math []pipeline.MathExpression) []TocEntry {
	root := s.Root()
	root.Find("." + SidebarClass).Remove()
	body := s.doc.Find("body")
	body.RemoveClass(HasTOCClass)

	headings := root.Find(headingSelector)
	if headings.Length() == 0 {
		s.TOC = nil
		return nil
	}

	entries := make([]TocEntry, 0, headings.Length())
	headings.Each(func(i int, h *goquery.Selection) {
		id, ok := h.Attr("id")
		if !ok || id == "" {
			id = "heading-" + strconv.Itoa(i)
			h.SetAttr("id", id)
		}
		entries = append(entries, TocEntry{
			Level:    headingLevel(h),
			AnchorID: id,
			Label:    headingLabel(h, math),
		})
	})

	root.AppendHtml(renderTOC(entries))
	body.AddClass(HasTOCClass)
	s.TOC = entries
	return entries
}

func headingLabel(h *goquery.Selection, math []pipeline.MathExpression) string {
	c := h.Clone()
	c.Find("span." + pipeline.MathPlaceholderClass).Each(func(_ int, ph *goquery.Selection) {
		i, err := strconv.Atoi(ph.AttrOr(pipeline.MathIndexAttr, ""))
		if err != nil || i < 0 || i >= len(math) {
			ph.Remove()
			return
		}
		ph.ReplaceWithHtml(html.EscapeString(math[i].Literal()))
	})
	return strings.TrimSpace(c.Text())
}

// headingLevel returns 1..6 from the tag name.
func headingLevel(h *goquery.Selection) int {
	name := goquery.NodeName(h)
	if len(name) != 2 {
		return 1
	}
	level := int(name[1] - '0')
	if level < 1 || level > 6 {
		return 1
	}
	return level
}

// renderTOC builds the side panel.
func renderTOC(entries []TocEntry) string {
	var sb strings.Builder
	sb.WriteString(`<div class="` + SidebarClass + `"><h2>` + TOCTitle + `</h2><ul class="toc-list">`)
	for _, e := range entries {
		sb.WriteString(`<li class="toc-item toc-level-`)
		sb.WriteString(strconv.Itoa(e.Level))
		sb.WriteString(`"><a href="#`)
		sb.WriteString(html.EscapeString(e.AnchorID))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(e.Label))
		sb.WriteString("</a></li>")
	}
	sb.WriteString("</ul></div>")
	return sb.String()
}
