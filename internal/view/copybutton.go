package view

import (
	"github.com/PuerkitoBio/goquery"
)

// Copy control markup. The viewer script reads data-copy-source to pick
// the nested code element ("code") or the whole block ("block").
const (
	CopyButtonClass = "copy-button"
	CopySourceAttr  = "data-copy-source"
	CopyLabel       = "Copy"
)

// AddCopyButtons adds a copy control to every pre block of the content
// that does not already carry one. It returns the number of controls added.
func AddCopyButtons(s *State) int {
	added := 0
	s.Root().Find("pre").Each(func(_ int, pre *goquery.Selection) {
		if pre.Find("."+CopyButtonClass).Length() > 0 {
			return
		}
		source := "block"
		if pre.Find("code").Length() > 0 {
			source = "code"
		}
		pre.AppendHtml(`<button class="` + CopyButtonClass + `" type="button" ` +
			CopySourceAttr + `="` + source + `">` + CopyLabel + `</button>`)
		added++
	})
	return added
}
