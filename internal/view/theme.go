package view

import (
	"fmt"
	"html"

	"github.com/alnah/go-mdview/internal/theme"
)

// Toggle control markup.
const (
	ToggleClass  = "theme-toggle-btn"
	ActionAttr   = "data-action"
	ToggleAction = "toggle-theme"
)

// ApplyTheme marks the body with mode, keeps exactly one theme stylesheet
// link in the head and renders the toggle control. It reports whether the
// mode differs from the one previously applied to s.
func ApplyTheme(s *State, mode theme.Mode, styles theme.StylesheetResolver) (bool, error) {
	if !mode.Valid() {
		return false, fmt.Errorf("%w: %q", theme.ErrInvalidMode, mode)
	}
	if styles == nil {
		styles = theme.AssetStylesheets{}
	}
	changed := s.mode != mode

	body := s.doc.Find("body")
	for _, c := range theme.BodyClasses() {
		body.RemoveClass(c)
	}
	body.AddClass(mode.BodyClass())

	head := s.doc.Find("head")
	head.Find("#" + mode.Toggled().LinkID()).Remove()
	href := styles.Stylesheet(mode)
	link := head.Find("#" + mode.LinkID())
	if link.Length() == 0 {
		head.AppendHtml(`<link id="` + mode.LinkID() + `" rel="stylesheet" href="` + html.EscapeString(href) + `"/>`)
	} else {
		link.SetAttr("href", href)
	}

	root := s.Root()
	toggle := root.Find("." + ToggleClass)
	if toggle.Length() == 0 {
		root.AppendHtml(`<div class="` + ToggleClass + `" role="button" tabindex="0" title="Toggle theme" ` +
			ActionAttr + `="` + ToggleAction + `"></div>`)
		toggle = root.Find("." + ToggleClass)
	}
	toggle.SetText(mode.Icon())

	s.mode = mode
	return changed, nil
}
