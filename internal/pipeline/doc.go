// Package pipeline implements the Markdown-to-HTML stage of a render cycle.
//
// This package handles the text-level half of rendering:
//   - Markdown preprocessing (image path encoding, line normalization,
//     math extraction into an intermediate representation)
//   - Link decoration with file-type labels
//   - Markdown to HTML conversion via Goldmark
//   - Relative reference resolution against the document base URL
//   - Expansion of math markers into placeholder elements
//
// DOM-level work on the assembled view (copy buttons, TOC, theme, math and
// diagram materialization) is handled by the view package. The split keeps
// this package free of any notion of a host page: its output is a plain HTML
// fragment plus the math expressions extracted for the cycle.
package pipeline
