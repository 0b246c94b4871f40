// Package view owns the host page of a render cycle.
//
// A State wraps the parsed host page (goquery over x/net/html) and is
// passed explicitly to every enhancer:
//   - AddCopyButtons: copy controls on code blocks
//   - GenerateTOC: heading anchors and the side panel
//   - ApplyTheme: body marker, stylesheet link and toggle control
//   - MaterializeDiagrams / MaterializeMath: diagram containers and formulas
//
// Every enhancer is idempotent. The Assembler runs them in that order after
// replacing the page content with a freshly converted fragment.
package view
