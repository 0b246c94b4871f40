package view

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/alnah/go-mdview/internal/pipeline"
	"github.com/alnah/go-mdview/internal/theme"
	"github.com/alnah/go-mdview/internal/typeset"
)

// Report summarizes one assembly.
type Report struct {
	CopyButtons  int
	Headings     int
	ThemeChanged bool
	MaterializeReport
}

// Assembler puts a converted fragment into the host page and runs the
// enhancers in order: copy buttons, TOC, theme, then diagrams and math.
// Theme runs before diagrams because diagram rendering depends on it; math
// runs last because it consumes the cycle's placeholders.
type Assembler struct {
	Math            typeset.Engine
	Diagrams        diagram.Engine
	Stylesheets     theme.StylesheetResolver
	DiagramLanguage string
	Logger          *slog.Logger
}

// NewAssembler returns an Assembler with the default engines.
func NewAssembler(logger *slog.Logger) *Assembler {
	return &Assembler{
		Math:            typeset.NewTreebloodEngine(),
		Diagrams:        diagram.NewMermaidEngine(),
		Stylesheets:     theme.AssetStylesheets{},
		DiagramLanguage: pipeline.DefaultDiagramLanguage,
		Logger:          logger,
	}
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Assemble replaces the content of s with fragment and enhances it. math is
// the expression sequence produced with fragment in the same cycle. Only an
// invalid mode or a cancelled context fail the assembly; enhancer problems
// are logged and counted in the report.
func (a *Assembler) Assemble(ctx context.Context, s *State, fragment string, math []pipeline.MathExpression, mode theme.Mode) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", theme.ErrInvalidMode, mode)
	}

	s.Replace(fragment)
	r := &Report{}

	r.CopyButtons = AddCopyButtons(s)
	r.Headings = len(GenerateTOC(s, math))

	changed, err := a.ApplyTheme(ctx, s, mode)
	if err != nil {
		return nil, err
	}
	r.ThemeChanged = changed

	created, err := MaterializeDiagrams(ctx, s, a.Diagrams, a.DiagramLanguage)
	r.Diagrams = created
	if err != nil {
		r.DiagramErr = err
		a.logger().Error("diagram rendering failed", slog.Any("err", err))
	}

	mr := MaterializeMath(s, a.Math, math, a.logger())
	r.Math, r.MathFallbacks, r.Unresolved = mr.Math, mr.MathFallbacks, mr.Unresolved

	return r, nil
}

// ApplyTheme applies mode to s. When the mode changes, the diagram engine
// is re-initialized and every existing diagram container is rendered again.
func (a *Assembler) ApplyTheme(ctx context.Context, s *State, mode theme.Mode) (bool, error) {
	changed, err := ApplyTheme(s, mode, a.Stylesheets)
	if err != nil || !changed {
		return changed, err
	}
	if a.Diagrams != nil {
		a.Diagrams.Initialize(mode)
		if err := RenderDiagrams(ctx, s, a.Diagrams); err != nil {
			a.logger().Error("diagram re-render failed", slog.Any("err", err))
		}
	}
	return true, nil
}
