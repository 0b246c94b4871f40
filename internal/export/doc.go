// Package export writes a rendered view to a self-contained file.
//
// Two formats are supported. HTML export inlines every asset stylesheet and
// strips the interactive parts of the page (viewer script, theme toggle, copy
// buttons). PDF export prints that standalone page with headless Chrome via
// go-rod; rod downloads Chromium on first use if no browser is found.
package export
