// Package diagram prepares diagram containers for rendering.
//
// Diagrams are drawn in the browser by mermaid. The server-side engine
// resets every container to its recorded source and tags it with the
// mermaid theme, so the viewer script can (re)draw the whole batch after
// each update.
package diagram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdview/internal/theme"
)

// Container markup shared with the view and the viewer script.
const (
	ContainerClass = "diagram"
	SourceAttr     = "data-diagram-source"
	ThemeAttr      = "data-diagram-theme"
	ProcessedAttr  = "data-processed"
	IndexAttr      = "data-diagram-index"
)

// ErrEmptyDiagram indicates a container without source.
var ErrEmptyDiagram = errors.New("diagram has no source")

// Engine renders diagram containers.
type Engine interface {
	// Initialize selects the theme used by subsequent renders.
	Initialize(mode theme.Mode)
	// RenderAll renders every container in one batch. Containers that fail
	// are left showing their source; the joined error lists them.
	RenderAll(ctx context.Context, containers *goquery.Selection) error
}

// MermaidEngine hydrates containers for client-side mermaid rendering.
type MermaidEngine struct {
	mode        theme.Mode
	initialized bool
}

// NewMermaidEngine returns an engine initialized for the default theme.
func NewMermaidEngine() *MermaidEngine {
	return &MermaidEngine{mode: theme.Default}
}

// MermaidTheme maps a viewer mode to a mermaid theme name.
func MermaidTheme(mode theme.Mode) string {
	if mode == theme.Dark {
		return "dark"
	}
	return "default"
}

func (e *MermaidEngine) Initialize(mode theme.Mode) {
	e.mode = mode
	e.initialized = true
}

// Mode returns the theme of the last Initialize.
func (e *MermaidEngine) Mode() theme.Mode {
	return e.mode
}

func (e *MermaidEngine) RenderAll(ctx context.Context, containers *goquery.Selection) error {
	var errs []error
	containers.EachWithBreak(func(i int, c *goquery.Selection) bool {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return false
		}

		src, _ := c.Attr(SourceAttr)
		if strings.TrimSpace(src) == "" {
			errs = append(errs, fmt.Errorf("%w: diagram %d", ErrEmptyDiagram, i))
			return true
		}

		// Rendered output is disposable: always restart from the source.
		c.Empty()
		c.SetText(src)
		c.RemoveAttr(ProcessedAttr)
		c.SetAttr(ThemeAttr, MermaidTheme(e.mode))
		c.SetAttr(IndexAttr, strconv.Itoa(i))
		return true
	})
	return errors.Join(errs...)
}

var _ Engine = (*MermaidEngine)(nil)
