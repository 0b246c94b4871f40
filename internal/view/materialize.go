package view

import (
	"context"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/alnah/go-mdview/internal/pipeline"
	"github.com/alnah/go-mdview/internal/typeset"
)

// Formula wrappers. Display math stays a span so it can live inside the
// paragraph goldmark put it in; the stylesheet makes it a block.
const (
	MathClass        = "math"
	MathInlineClass  = "math-inline"
	MathDisplayClass = "math-display"
	MathErrorClass   = "math-error"
)

// MaterializeReport counts what a materialization pass did.
type MaterializeReport struct {
	Diagrams      int   // containers created from source blocks
	DiagramErr    error // RenderAll failure, logged and not propagated
	Math          int   // formulas rendered
	MathFallbacks int   // formulas left as their literal text
	Unresolved    int   // placeholders whose index had no expression
}

// MaterializeDiagrams replaces every pre > code.language-<language> block
// with a diagram container holding the source in an attribute, then renders
// all containers in one batch. engine may be nil, leaving containers
// unrendered.
func MaterializeDiagrams(ctx context.Context, s *State, engine diagram.Engine, language string) (int, error) {
	if language == "" {
		language = pipeline.DefaultDiagramLanguage
	}

	created := 0
	s.Root().Find("pre > code.language-" + language).Each(func(_ int, code *goquery.Selection) {
		src := strings.TrimRight(code.Text(), "\n")
		code.Parent().ReplaceWithHtml(`<div class="` + html.EscapeString(language) + " " + diagram.ContainerClass +
			`" ` + diagram.SourceAttr + `="` + html.EscapeString(src) + `"></div>`)
		created++
	})

	return created, RenderDiagrams(ctx, s, engine)
}

// RenderDiagrams hands every diagram container of the content to engine.
func RenderDiagrams(ctx context.Context, s *State, engine diagram.Engine) error {
	containers := s.Root().Find("div." + diagram.ContainerClass)
	if engine == nil || containers.Length() == 0 {
		return nil
	}
	return engine.RenderAll(ctx, containers)
}

// MaterializeMath resolves every placeholder through engine. A formula that
// fails to render is replaced by its literal delimited text. Placeholders
// whose index is out of range are removed. Markers that ended up in
// attribute values are replaced by the literal text.
func MaterializeMath(s *State, engine typeset.Engine, math []pipeline.MathExpression, logger *slog.Logger) MaterializeReport {
	if logger == nil {
		logger = slog.Default()
	}
	var r MaterializeReport

	s.Root().Find("span." + pipeline.MathPlaceholderClass).Each(func(_ int, ph *goquery.Selection) {
		raw, _ := ph.Attr(pipeline.MathIndexAttr)
		index, err := strconv.Atoi(raw)
		if err != nil || index < 0 || index >= len(math) {
			logger.Warn("unresolved math placeholder", slog.String("index", raw), slog.Int("expressions", len(math)))
			ph.Remove()
			r.Unresolved++
			return
		}

		expr := math[index]
		markup, err := renderFormula(engine, expr)
		if err != nil {
			logger.Warn("math rendering failed",
				slog.Int("index", index),
				slog.String("kind", expr.Kind.String()),
				slog.Any("err", err))
			ph.ReplaceWithHtml(`<span class="` + MathErrorClass + `">` + html.EscapeString(expr.Literal()) + `</span>`)
			r.MathFallbacks++
			return
		}

		class := MathClass + " " + MathInlineClass
		if expr.Display() {
			class = MathClass + " " + MathDisplayClass
		}
		ph.ReplaceWithHtml(`<span class="` + class + `">` + markup + `</span>`)
		r.Math++
	})

	resolveAttributeMarkers(s, math)
	return r
}

func renderFormula(engine typeset.Engine, expr pipeline.MathExpression) (string, error) {
	if engine == nil {
		return "", typeset.ErrTypeset
	}
	return engine.Render(expr.Body, expr.Display())
}

// resolveAttributeMarkers rewrites markers found in alt and title values.
func resolveAttributeMarkers(s *State, math []pipeline.MathExpression) {
	literal := func(index int) string {
		if index < 0 || index >= len(math) {
			return ""
		}
		return math[index].Literal()
	}
	for _, attr := range []string{"alt", "title"} {
		s.Root().Find("[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
			v, _ := sel.Attr(attr)
			if strings.Contains(v, pipeline.MathStartMarker) {
				sel.SetAttr(attr, pipeline.ReplaceMarkers(v, literal))
			}
		})
	}
}
