package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultDiagramLanguage is the fenced code language reserved for diagrams.
const DefaultDiagramLanguage = "mermaid"

// ConvertOptions configures a single conversion.
type ConvertOptions struct {
	// BaseURL resolves relative image and link references. Empty leaves
	// references untouched.
	BaseURL string

	// Decorate labels links. Nil means ExtensionLabel.
	Decorate LinkDecorator

	// DiagramLanguage is the fenced code language kept out of syntax
	// highlighting for diagram materialization. Empty means DefaultDiagramLanguage.
	DiagramLanguage string
}

func (o ConvertOptions) decorator() LinkDecorator {
	if o.Decorate == nil {
		return ExtensionLabel
	}
	return o.Decorate
}

func (o ConvertOptions) diagramLanguage() string {
	if o.DiagramLanguage == "" {
		return DefaultDiagramLanguage
	}
	return o.DiagramLanguage
}

// HTMLConverter abstracts Markdown to HTML fragment conversion.
type HTMLConverter interface {
	Convert(ctx context.Context, content string, opts ConvertOptions) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
// A goldmark instance is built per call so the link decorator is never
// shared state between conversions.
type GoldmarkConverter struct {
	highlightStyle string
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{highlightStyle: "github"}
}

// newMarkdown builds the engine for one conversion.
func (c *GoldmarkConverter) newMarkdown(opts ConvertOptions) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(c.highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes so both themes can style code
				),
			),
			&diagramFences{language: opts.diagramLanguage()},
			&decoratedLinks{decorate: opts.decorator()},
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // # Heading {#custom-id}
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>
			html.WithXHTML(),     // Self-closing tags
			// Note: WithUnsafe() intentionally NOT used.
			// Math markers are plain text and expanded after Goldmark.
		),
	)
}

// Convert converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) Convert(ctx context.Context, content string, opts ConvertOptions) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: internal error: %v", ErrHTMLConversion, r)}
			}
		}()

		var buf bytes.Buffer
		if err := c.newMarkdown(opts).Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}

		fragment, err := postprocessFragment(buf.String(), opts.BaseURL)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fragment}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// ---------------------------------------------------------------------------
// Link decoration
// ---------------------------------------------------------------------------

// decoratedLinks replaces goldmark's link renderer with one that appends
// the decorator's label after the link text.
type decoratedLinks struct {
	decorate LinkDecorator
}

func (e *decoratedLinks) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&linkRenderer{Config: html.NewConfig(), decorate: e.decorate}, 100),
		),
	)
}

type linkRenderer struct {
	html.Config
	decorate LinkDecorator
}

func (r *linkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindLink, r.renderLink)
}

func (r *linkRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if entering {
		_, _ = w.WriteString(`<a href="`)
		if r.Unsafe || !html.IsDangerousURL(n.Destination) {
			_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
		}
		_ = w.WriteByte('"')
		if n.Title != nil {
			_, _ = w.WriteString(` title="`)
			r.Writer.Write(w, n.Title)
			_ = w.WriteByte('"')
		}
		if n.Attributes() != nil {
			html.RenderAttributes(w, n, html.LinkAttributeFilter)
		}
		_ = w.WriteByte('>')
		return ast.WalkContinue, nil
	}

	if label := r.decorate(string(n.Destination), string(n.Title), nodeText(n, source)); label != "" {
		_, _ = w.WriteString(labelMarkup(label))
	}
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

// nodeText concatenates the text content below n.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// ---------------------------------------------------------------------------
// Diagram fences
// ---------------------------------------------------------------------------

// KindDiagramSource is the node kind of a fenced block in the diagram language.
var KindDiagramSource = ast.NewNodeKind("DiagramSource")

// diagramSource holds the raw lines of a diagram fence.
type diagramSource struct {
	ast.BaseBlock
	language string
}

func (n *diagramSource) Kind() ast.NodeKind { return KindDiagramSource }

func (n *diagramSource) IsRaw() bool { return true }

func (n *diagramSource) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Language": n.language}, nil)
}

// diagramFences keeps diagram fences away from the highlighter so the view
// receives their source verbatim as <pre><code class="language-X">.
type diagramFences struct {
	language string
}

func (e *diagramFences) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(&diagramTransformer{language: e.language}, 100),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&diagramRenderer{}, 100),
		),
	)
}

type diagramTransformer struct {
	language string
}

func (t *diagramTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if strings.EqualFold(string(fence.Language(reader.Source())), t.language) {
			fences = append(fences, fence)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, fence := range fences {
		parent := fence.Parent()
		if parent == nil {
			continue
		}
		src := &diagramSource{language: t.language}
		src.SetLines(fence.Lines())
		parent.ReplaceChild(parent, fence, src)
	}
}

type diagramRenderer struct{}

func (r *diagramRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagramSource, r.render)
}

func (r *diagramRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*diagramSource)
	_, _ = w.WriteString(`<pre><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.language)))
	_, _ = w.WriteString(`">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkContinue, nil
}

// Compile-time interface checks.
var (
	_ HTMLConverter         = (*GoldmarkConverter)(nil)
	_ goldmark.Extender     = (*decoratedLinks)(nil)
	_ goldmark.Extender     = (*diagramFences)(nil)
	_ renderer.NodeRenderer = (*linkRenderer)(nil)
	_ renderer.SetOptioner  = (*linkRenderer)(nil)
	_ renderer.NodeRenderer = (*diagramRenderer)(nil)
	_ parser.ASTTransformer = (*diagramTransformer)(nil)
	_ MarkdownPreprocessor  = (*CommonMarkPreprocessor)(nil)
)
