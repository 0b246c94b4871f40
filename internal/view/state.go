package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdview/internal/theme"
)

// Host page structure.
const (
	RootID             = "mdview-root"
	MainContainerClass = "main-container"
	MarkdownBodyClass  = "markdown-body"
	DocumentTitle      = "Markdown Viewer"
)

// ErrParsePage indicates the host page could not be parsed.
var ErrParsePage = errors.New("parsing host page failed")

// DefaultPage is the minimal host page used when no template is given.
const DefaultPage = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` + DocumentTitle +
	`</title></head><body><div id="` + RootID + `"></div></body></html>`

// ScrollState is the viewer's scroll position, carried across re-renders.
type ScrollState struct {
	MainY    float64 `json:"mainY"`
	SidebarY float64 `json:"sidebarY"`
}

// State is the host page of a session. It is not safe for concurrent use.
type State struct {
	doc *goquery.Document

	// Scroll is the last position reported by the viewer.
	Scroll ScrollState

	// TOC lists the headings of the current content.
	TOC []TocEntry

	mode theme.Mode // applied theme, empty before the first ApplyTheme
}

// NewState parses page. A page without a content root gets one appended to
// its body.
func NewState(page string) (*State, error) {
	if strings.TrimSpace(page) == "" {
		page = DefaultPage
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsePage, err)
	}
	s := &State{doc: doc}
	if s.Root().Length() == 0 {
		doc.Find("body").AppendHtml(`<div id="` + RootID + `"></div>`)
	}
	return s, nil
}

// Document returns the underlying page.
func (s *State) Document() *goquery.Document {
	return s.doc
}

// Root returns the element whose content is replaced on every cycle.
func (s *State) Root() *goquery.Selection {
	return s.doc.Find("#" + RootID)
}

// Content returns the markdown body inside the root.
func (s *State) Content() *goquery.Selection {
	return s.Root().Find("." + MarkdownBodyClass)
}

// Theme returns the mode applied by the last ApplyTheme, or "".
func (s *State) Theme() theme.Mode {
	return s.mode
}

// Replace swaps the root content for fragment wrapped in the styling
// containers, and resets the page title.
func (s *State) Replace(fragment string) {
	s.Root().SetHtml(`<div class="` + MainContainerClass + `"><div class="` + MarkdownBodyClass + `">` +
		fragment + `</div></div>`)
	s.TOC = nil

	title := s.doc.Find("head > title")
	if title.Length() == 0 {
		s.doc.Find("head").AppendHtml("<title></title>")
		title = s.doc.Find("head > title")
	}
	title.SetText(DocumentTitle)
}

// HTML renders the whole page.
func (s *State) HTML() (string, error) {
	out, err := s.doc.Html()
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return out, nil
}

// RootHTML renders the content root's inner HTML.
func (s *State) RootHTML() (string, error) {
	out, err := s.Root().Html()
	if err != nil {
		return "", fmt.Errorf("rendering content: %w", err)
	}
	return out, nil
}

// Clone returns an independent copy of the state.
func (s *State) Clone() (*State, error) {
	page, err := s.HTML()
	if err != nil {
		return nil, err
	}
	c, err := NewState(page)
	if err != nil {
		return nil, err
	}
	c.Scroll = s.Scroll
	c.TOC = append([]TocEntry(nil), s.TOC...)
	c.mode = s.mode
	return c, nil
}
