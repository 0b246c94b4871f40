package mdview

import (
	"log/slog"
	"time"

	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/alnah/go-mdview/internal/pipeline"
	"github.com/alnah/go-mdview/internal/relay"
	"github.com/alnah/go-mdview/internal/theme"
	"github.com/alnah/go-mdview/internal/typeset"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used by the session and its refresh loop.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFetcher replaces the fetch relay. The session does not close an
// injected fetcher.
func WithFetcher(f relay.Fetcher) Option {
	return func(s *Session) {
		s.fetcher = f
	}
}

// WithConverter replaces the Markdown to HTML converter.
func WithConverter(c pipeline.HTMLConverter) Option {
	return func(s *Session) {
		if c != nil {
			s.converter = c
		}
	}
}

// WithMathEngine replaces the math typesetter.
func WithMathEngine(e typeset.Engine) Option {
	return func(s *Session) {
		s.assembler.Math = e
	}
}

// WithDiagramEngine replaces the diagram renderer.
func WithDiagramEngine(e diagram.Engine) Option {
	return func(s *Session) {
		s.assembler.Diagrams = e
	}
}

// WithStylesheets sets where theme stylesheets are loaded from.
func WithStylesheets(r theme.StylesheetResolver) Option {
	return func(s *Session) {
		if r != nil {
			s.assembler.Stylesheets = r
		}
	}
}

// WithThemeStore sets where the theme preference is persisted.
func WithThemeStore(store theme.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLinkDecorator sets the strategy labeling links. Nil keeps the
// extension labels.
func WithLinkDecorator(d pipeline.LinkDecorator) Option {
	return func(s *Session) {
		s.decorate = d
	}
}

// WithDiagramLanguage sets the fenced code language rendered as diagrams.
func WithDiagramLanguage(lang string) Option {
	return func(s *Session) {
		if lang != "" {
			s.assembler.DiagramLanguage = lang
		}
	}
}

// WithBaseURL sets the URL relative references in the document resolve
// against. It defaults to the document URL.
func WithBaseURL(base string) Option {
	return func(s *Session) {
		s.baseURL = base
	}
}

// WithPage sets the host page the content is rendered into.
func WithPage(page string) Option {
	return func(s *Session) {
		s.page = page
	}
}

// WithInterval sets the refresh polling period.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithWatch enables the file-system watcher that wakes the refresh loop
// early.
func WithWatch(enabled bool) Option {
	return func(s *Session) {
		s.watch = enabled
	}
}
