package pipeline

import (
	"html"
	"net/url"
	"strings"
)

// linkResolutionBase is an arbitrary absolute URL used to parse hrefs.
// Only the path component of the resolved URL is inspected.
const linkResolutionBase = "http://dummy.com"

// webDocumentExtensions are never labeled: they render as pages, not files.
var webDocumentExtensions = map[string]bool{
	"html": true,
	"htm":  true,
	"php":  true,
	"jsp":  true,
	"asp":  true,
	"aspx": true,
}

// LinkDecorator returns the label to append after a link's text, or ""
// to leave the link undecorated. text is the link's rendered inner HTML.
type LinkDecorator func(href, title, text string) string

// ExtensionLabel is the default LinkDecorator. It labels links to files
// with their lowercased extension, e.g. "[pdf]".
//
// Directory links, paths without an extension, web document extensions and
// malformed hrefs are not labeled. A link whose text already contains the
// label is not labeled again.
func ExtensionLabel(href, title, text string) string {
	ext, ok := linkExtension(href)
	if !ok {
		return ""
	}
	label := "[" + ext + "]"
	if strings.Contains(text, label) {
		return ""
	}
	return label
}

// NoDecoration is a LinkDecorator that never labels links.
func NoDecoration(href, title, text string) string {
	return ""
}

// DecorateLink returns anchor markup for a link, labeled by ExtensionLabel
// when it points at a file. text is inserted as HTML.
func DecorateLink(href, title, text string) string {
	return decorateWith(ExtensionLabel, href, title, text)
}

func decorateWith(decorate LinkDecorator, href, title, text string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(href))
	b.WriteString(`"`)
	if title != "" {
		b.WriteString(` title="`)
		b.WriteString(html.EscapeString(title))
		b.WriteString(`"`)
	}
	b.WriteString(`>`)
	b.WriteString(text)
	if label := decorate(href, title, text); label != "" {
		b.WriteString(labelMarkup(label))
	}
	b.WriteString(`</a>`)
	return b.String()
}

// labelMarkup renders a decoration label as it follows the link text.
func labelMarkup(label string) string {
	return ` <span class="file-ext">` + html.EscapeString(label) + `</span>`
}

// linkExtension resolves href and returns the lowercased extension of the
// last path element.
func linkExtension(href string) (string, bool) {
	base, err := url.Parse(linkResolutionBase)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	p := base.ResolveReference(ref).Path
	if p == "" || strings.HasSuffix(p, "/") {
		return "", false
	}

	name := p[strings.LastIndex(p, "/")+1:]
	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot == len(name)-1 {
		return "", false
	}

	ext := strings.ToLower(name[dot+1:])
	if webDocumentExtensions[ext] {
		return "", false
	}
	return ext, true
}
