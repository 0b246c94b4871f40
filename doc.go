// Package mdview renders a Markdown document into a live HTML view and keeps
// that view synchronized with its source.
//
// # Quick Start
//
// Open a session on a document, run its refresh loop, and subscribe to the
// updates it publishes:
//
//	docURL, err := mdview.DocumentURL("notes.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sess, err := mdview.NewSession(docURL, mdview.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	if err := sess.Open(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	updates, unsubscribe := sess.Subscribe()
//	defer unsubscribe()
//	go sess.Run(ctx)
//
// # Render Cycle
//
// Every cycle runs the same stages on the session's view state:
//
//  1. Preprocessing (image path encoding, line normalization, math extraction)
//  2. Markdown to HTML conversion via Goldmark, with link decoration
//  3. Assembly into the host page
//  4. Enhancers: copy buttons, table of contents, theme, diagrams, math
//
// A cycle that fails during conversion leaves the previous view untouched.
//
// # Refresh
//
// Local documents (file:// URLs) are polled through the fetch relay once per
// interval and re-rendered only when their text changes. WithWatch adds a
// file-system watcher that wakes the loop as soon as the file is written.
// Remote documents are rendered once.
//
// # Theme
//
// The light/dark preference is persisted through a theme.Store and survives
// restarts. ToggleTheme persists the new mode before applying it.
package mdview
