package diagram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdview/internal/theme"
)

func newDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return doc
}

func TestMermaidEngine_RenderAll(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<div class="diagram" data-diagram-source="graph TD;A-->B" data-processed="true"><svg></svg></div>`+
		`<div class="diagram" data-diagram-source="pie"></div>`)

	engine := NewMermaidEngine()
	engine.Initialize(theme.Dark)

	if err := engine.RenderAll(context.Background(), doc.Find(".diagram")); err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}

	first := doc.Find(".diagram").First()
	if got := first.Text(); got != "graph TD;A-->B" {
		t.Errorf("container text = %q, want the source", got)
	}
	if first.Find("svg").Length() != 0 {
		t.Error("stale rendering should be removed")
	}
	if _, ok := first.Attr(ProcessedAttr); ok {
		t.Error("processed marker should be cleared")
	}
	if got, _ := first.Attr(ThemeAttr); got != "dark" {
		t.Errorf("theme attr = %q, want dark", got)
	}
	if got, _ := doc.Find(".diagram").Last().Attr(IndexAttr); got != "1" {
		t.Errorf("index attr = %q, want 1", got)
	}
}

func TestMermaidEngine_RenderAll_EmptySource(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<div class="diagram" data-diagram-source=""></div><div class="diagram" data-diagram-source="pie"></div>`)
	engine := NewMermaidEngine()

	err := engine.RenderAll(context.Background(), doc.Find(".diagram"))
	if !errors.Is(err, ErrEmptyDiagram) {
		t.Fatalf("RenderAll() error = %v, want ErrEmptyDiagram", err)
	}
	if got, _ := doc.Find(".diagram").Last().Attr(ThemeAttr); got != "default" {
		t.Errorf("valid container after a failing one should still render, theme attr = %q", got)
	}
}

func TestMermaidEngine_RenderAll_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := newDoc(t, `<div class="diagram" data-diagram-source="pie"></div>`)
	if err := NewMermaidEngine().RenderAll(ctx, doc.Find(".diagram")); !errors.Is(err, context.Canceled) {
		t.Errorf("RenderAll() error = %v, want context.Canceled", err)
	}
}

func TestMermaidTheme(t *testing.T) {
	t.Parallel()

	if got := MermaidTheme(theme.Light); got != "default" {
		t.Errorf("MermaidTheme(light) = %q, want default", got)
	}
	if got := MermaidTheme(theme.Dark); got != "dark" {
		t.Errorf("MermaidTheme(dark) = %q, want dark", got)
	}
}
