package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteRelativePaths resolves relative image and link references against
// baseURL. If baseURL is empty, returns the HTML unchanged.
//
// Rewrites:
//   - img[src]: relative paths to images
//   - a[href]: relative file paths (not anchors, not URLs)
//
// Does NOT rewrite:
//   - video, audio, source elements
//   - srcset attributes
//   - CSS url() references
//   - script[src]
//   - Absolute paths or URLs (already resolved)
func rewriteRelativePaths(htmlContent, baseURL string) (string, error) {
	if baseURL == "" {
		return htmlContent, nil
	}
	return transformHTML(htmlContent, baseURL, nil)
}

// postprocessFragment runs the DOM passes on converter output in a single
// parse: reference resolution, then math marker expansion.
func postprocessFragment(fragment, baseURL string) (string, error) {
	return transformHTML(fragment, baseURL, expandMathMarkers)
}

// transformHTML parses content once, resolves references when baseURL is
// set, applies then and renders the result back.
func transformHTML(content, baseURL string, then func(*html.Node)) (string, error) {
	var base *url.URL
	if baseURL != "" {
		var err error
		if base, err = url.Parse(baseURL); err != nil {
			return "", err
		}
	}

	doc, isFragment, err := parseHTML(content)
	if err != nil {
		return "", err
	}
	if base != nil {
		rewriteNode(doc, base)
	}
	if then != nil {
		then(doc)
	}
	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and resolves relative references.
func rewriteNode(n *html.Node, base *url.URL) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", base)
		case atom.A:
			rewriteAttr(n, "href", base)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, base)
	}
}

// rewriteAttr rewrites a single attribute if it's a relative path.
func rewriteAttr(n *html.Node, attrName string, base *url.URL) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}
		ref, err := url.Parse(attr.Val)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)

		// Security: references may not climb above the document directory
		if !isUnderBase(resolved, base) {
			continue
		}
		n.Attr[i].Val = resolved.String()
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(p string) bool {
	if p == "" {
		return false
	}

	// Skip protocol-relative URLs and anchors
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "#") {
		return false
	}

	// Skip absolute paths
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return false
	}

	// Skip anything with a scheme (http, https, file, data, mailto, ...)
	if u, err := url.Parse(p); err != nil || u.Scheme != "" {
		return false
	}
	return true
}

// isUnderBase checks that resolved stays within the directory of base.
// ResolveReference already removed dot segments from resolved.Path.
func isUnderBase(resolved, base *url.URL) bool {
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return false
	}
	dir := base.Path[:strings.LastIndex(base.Path, "/")+1]
	if dir == "" {
		return true
	}
	return strings.HasPrefix(resolved.Path, dir)
}
