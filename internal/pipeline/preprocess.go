package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Math placeholder markers use Unicode Private Use Area characters.
// They pass through Goldmark unchanged (no WithUnsafe needed) and are
// expanded into placeholder elements after HTML generation.
const (
	MathStartMarker = "\uE002" // U+E002: Private Use Area
	MathEndMarker   = "\uE003" // U+E003: Private Use Area
)

// Precompiled regex patterns for performance.
var (
	// Image reference ![alt](src)
	imageReference = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Block math $$...$$, may span lines
	blockMath = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)

	// Inline math $...$, never crosses a line break
	inlineMath = regexp.MustCompile(`\$([^\n]+?)\$`)

	// Fence line: indentation (list items nest fences), a run of three or
	// more backticks or tildes, then the info string.
	fenceLine = regexp.MustCompile("^[ \t]*(`{3,}|~{3,})(.*)$")
)

// MathKind distinguishes display math from inline math.
type MathKind int

const (
	MathInline MathKind = iota
	MathBlock
)

// String returns "inline" or "block".
func (k MathKind) String() string {
	if k == MathBlock {
		return "block"
	}
	return "inline"
}

// MathExpression is one math formula extracted during preprocessing.
// Its index in Document.Math is the index carried by its placeholder.
type MathExpression struct {
	Kind   MathKind
	Body   string // trimmed formula source, without delimiters
	Source string // exact delimited text as found in the document
}

// Display reports whether the expression renders in display mode.
func (m MathExpression) Display() bool {
	return m.Kind == MathBlock
}

// Literal returns the delimited text used when rendering fails.
func (m MathExpression) Literal() string {
	if m.Source != "" {
		return m.Source
	}
	if m.Kind == MathBlock {
		return "$$" + m.Body + "$$"
	}
	return "$" + m.Body + "$"
}

// SegmentKind tags a Segment variant.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentMath
)

// Segment is one element of the preprocessed document: either literal
// Markdown text or a placeholder for Document.Math[Index].
type Segment struct {
	Kind  SegmentKind
	Text  string // SegmentLiteral only
	Index int    // SegmentMath only
}

// Document is the intermediate representation produced by Preprocess.
type Document struct {
	Segments []Segment
	Math     []MathExpression
}

// Text flattens the document into Markdown for the conversion engine.
// Math segments become MathStartMarker + index + MathEndMarker.
func (d *Document) Text() string {
	var b strings.Builder
	for _, s := range d.Segments {
		if s.Kind == SegmentMath {
			b.WriteString(Marker(s.Index))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// Resolve flattens the document, replacing each placeholder with the
// output of render for the expression it stands for.
func (d *Document) Resolve(render func(MathExpression) string) string {
	var b strings.Builder
	for _, s := range d.Segments {
		if s.Kind == SegmentLiteral {
			b.WriteString(s.Text)
			continue
		}
		if s.Index < 0 || s.Index >= len(d.Math) {
			continue
		}
		b.WriteString(render(d.Math[s.Index]))
	}
	return b.String()
}

// Marker returns the in-text marker for the math expression at index.
func Marker(index int) string {
	return MathStartMarker + strconv.Itoa(index) + MathEndMarker
}

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	Preprocess(content string) *Document
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// Preprocess runs the package-level Preprocess.
func (p *CommonMarkPreprocessor) Preprocess(content string) *Document {
	return Preprocess(content)
}

// Preprocess encodes image paths, normalizes line endings and extracts math
// into placeholders. Image encoding runs first so later passes never see
// unencoded spaces in paths. Fenced code blocks and inline code spans are
// copied verbatim.
//
// Block math is extracted before inline math across the whole document, so
// block expressions take the lowest indices.
func Preprocess(content string) *Document {
	content = EncodeImagePaths(content)
	content = normalizeLineEndings(content)

	doc := &Document{}
	pieces := doc.extractBlocks(content)
	for _, p := range pieces {
		switch {
		case p.math >= 0:
			doc.Segments = append(doc.Segments, Segment{Kind: SegmentMath, Index: p.math})
		case p.verbatim:
			doc.appendLiteral(p.text)
		default:
			doc.extractInline(p.text)
		}
	}
	return doc
}

// piece is an intermediate result of the block pass.
type piece struct {
	text     string
	verbatim bool // code, never scanned for math
	math     int  // index into Document.Math, or -1 for text
}

// extractBlocks splits content into code, prose and block math pieces,
// registering block expressions in document order.
func (d *Document) extractBlocks(content string) []piece {
	var pieces []piece
	for _, chunk := range splitFencedCode(content) {
		if chunk.code {
			pieces = append(pieces, piece{text: chunk.text, verbatim: true, math: -1})
			continue
		}
		for _, span := range splitCodeSpans(chunk.text) {
			if span.code {
				pieces = append(pieces, piece{text: span.text, verbatim: true, math: -1})
				continue
			}
			last := 0
			for _, loc := range blockMath.FindAllStringSubmatchIndex(span.text, -1) {
				pieces = append(pieces, piece{text: span.text[last:loc[0]], math: -1})
				pieces = append(pieces, piece{math: len(d.Math)})
				d.Math = append(d.Math, MathExpression{
					Kind:   MathBlock,
					Body:   strings.TrimSpace(span.text[loc[2]:loc[3]]),
					Source: span.text[loc[0]:loc[1]],
				})
				last = loc[1]
			}
			pieces = append(pieces, piece{text: span.text[last:], math: -1})
		}
	}
	return pieces
}

// EncodeImagePaths percent-encodes spaces in image reference targets.
// The alt text is left untouched.
func EncodeImagePaths(content string) string {
	return imageReference.ReplaceAllStringFunc(content, func(match string) string {
		m := imageReference.FindStringSubmatch(match)
		alt, src := m[1], m[2]
		if !strings.Contains(src, " ") {
			return match
		}
		encoded := strings.ReplaceAll(strings.TrimSpace(src), " ", "%20")
		return "![" + alt + "](" + encoded + ")"
	})
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// extractInline extracts inline math from prose text.
func (d *Document) extractInline(text string) {
	last := 0
	for _, loc := range inlineMath.FindAllStringSubmatchIndex(text, -1) {
		d.appendLiteral(text[last:loc[0]])
		d.appendMath(MathExpression{
			Kind:   MathInline,
			Body:   strings.TrimSpace(text[loc[2]:loc[3]]),
			Source: text[loc[0]:loc[1]],
		})
		last = loc[1]
	}
	d.appendLiteral(text[last:])
}

func (d *Document) appendMath(expr MathExpression) {
	d.Segments = append(d.Segments, Segment{Kind: SegmentMath, Index: len(d.Math)})
	d.Math = append(d.Math, expr)
}

// appendLiteral merges adjacent literal text into a single segment.
func (d *Document) appendLiteral(text string) {
	if text == "" {
		return
	}
	if n := len(d.Segments); n > 0 && d.Segments[n-1].Kind == SegmentLiteral {
		d.Segments[n-1].Text += text
		return
	}
	d.Segments = append(d.Segments, Segment{Kind: SegmentLiteral, Text: text})
}

// textChunk is a run of lines that is either inside a fenced code block
// (fence lines included) or outside of one.
type textChunk struct {
	text string
	code bool
}

// splitFencedCode splits content into prose and fenced-code chunks.
// Concatenating the chunk texts yields content unchanged. A fence closes
// only on a run of its own character at least as long as the opening run,
// so shorter runs inside the block stay code. An unclosed fence runs to the
// end of the content.
func splitFencedCode(content string) []textChunk {
	lines := strings.SplitAfter(content, "\n")
	var chunks []textChunk
	var current strings.Builder
	var open string // opening run, empty outside code

	flush := func(code bool) {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, textChunk{text: current.String(), code: code})
		current.Reset()
	}

	for _, line := range lines {
		switch {
		case open == "":
			if run, ok := openingFence(line); ok {
				flush(false)
				open = run
			}
			current.WriteString(line)
		case closesFence(line, open):
			current.WriteString(line)
			flush(true)
			open = ""
		default:
			current.WriteString(line)
		}
	}
	flush(open != "")
	return chunks
}

// openingFence returns the delimiter run of a line opening a fenced block.
// A backtick run followed by more backticks on the same line is an inline
// code span, not a fence.
func openingFence(line string) (string, bool) {
	m := fenceLine.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return "", false
	}
	if m[1][0] == '`' && strings.Contains(m[2], "`") {
		return "", false
	}
	return m[1], true
}

// closesFence reports whether line closes the block opened by run.
func closesFence(line, run string) bool {
	m := fenceLine.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	return m != nil &&
		m[1][0] == run[0] &&
		len(m[1]) >= len(run) &&
		strings.TrimSpace(m[2]) == ""
}

// splitCodeSpans splits prose into inline code spans and the text between
// them. A backtick run without a closing run of equal length is plain text.
func splitCodeSpans(text string) []textChunk {
	var chunks []textChunk
	last, i := 0, 0
	for i < len(text) {
		if text[i] != '`' {
			i++
			continue
		}
		run := backtickRun(text, i)
		closing := closingRun(text, i+run, run)
		if closing < 0 {
			i += run
			continue
		}
		end := closing + run
		if i > last {
			chunks = append(chunks, textChunk{text: text[last:i]})
		}
		chunks = append(chunks, textChunk{text: text[i:end], code: true})
		last, i = end, end
	}
	if last < len(text) {
		chunks = append(chunks, textChunk{text: text[last:]})
	}
	return chunks
}

func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// closingRun returns the start of the next backtick run of exactly n
// backticks at or after from, or -1.
func closingRun(s string, from, n int) int {
	for j := from; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		r := backtickRun(s, j)
		if r == n {
			return j
		}
		j += r
	}
	return -1
}
