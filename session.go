package mdview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-mdview/internal/fileutil"
	"github.com/alnah/go-mdview/internal/pipeline"
	"github.com/alnah/go-mdview/internal/refresh"
	"github.com/alnah/go-mdview/internal/relay"
	"github.com/alnah/go-mdview/internal/theme"
	"github.com/alnah/go-mdview/internal/view"
)

// Update reasons.
const (
	ReasonOpen   = "open"
	ReasonChange = "change"
	ReasonTheme  = "theme"
)

// UpdateType is the message type of an Update sent to viewers.
const UpdateType = "update"

// Update is the view as it stands after a render cycle or a theme toggle.
type Update struct {
	Type       string           `json:"type"`
	Version    uint64           `json:"version"`
	Body       string           `json:"body"`
	Theme      theme.Mode       `json:"theme"`
	Stylesheet string           `json:"stylesheet"`
	Scroll     view.ScrollState `json:"scroll"`
	Reason     string           `json:"reason"`
}

// Session owns the view of one document and drives its render cycles.
//
// Render cycles, theme toggles, scroll reports and snapshots all run under
// the session lock, so the view state is never mutated concurrently.
type Session struct {
	url      string
	baseURL  string
	page     string
	local    bool
	interval time.Duration
	watch    bool
	logger   *slog.Logger

	fetcher      relay.Fetcher
	ownsFetcher  bool
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	decorate     pipeline.LinkDecorator
	assembler    *view.Assembler
	store        theme.Store

	loop *refresh.Loop
	wake chan struct{}

	mu          sync.Mutex
	state       *view.State
	theme       *theme.State
	text        string
	rendered    bool
	running     bool
	closed      bool
	version     uint64
	latest      Update
	subscribers map[chan Update]struct{}
}

// DocumentURL turns a command-line argument into a document URL. http(s)
// and file URLs are kept; anything else is taken as a local path.
func DocumentURL(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", ErrEmptyDocument
	}
	if fileutil.IsURL(arg) || fileutil.IsFileURL(arg) {
		return arg, nil
	}
	return fileutil.FileURL(arg)
}

// NewSession creates a session for the document at docURL. Nothing is
// fetched until Open.
func NewSession(docURL string, opts ...Option) (*Session, error) {
	docURL = strings.TrimSpace(docURL)
	if docURL == "" {
		return nil, ErrEmptyDocument
	}
	if _, err := url.Parse(docURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !fileutil.IsURL(docURL) && !fileutil.IsFileURL(docURL) {
		return nil, fmt.Errorf("%w: %q (must be file://, http:// or https://)", ErrInvalidDocument, docURL)
	}

	s := &Session{
		url:          docURL,
		baseURL:      docURL,
		local:        relay.IsLocal(docURL),
		interval:     refresh.DefaultInterval,
		logger:       slog.Default(),
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(),
		assembler:    view.NewAssembler(nil),
		subscribers:  make(map[chan Update]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = relay.New()
		s.ownsFetcher = true
	}
	s.assembler.Logger = s.logger

	if s.store == nil {
		store, err := theme.NewFileStore("")
		if err != nil {
			s.logger.Warn("theme preference will not persist", slog.Any("err", err))
			s.store = theme.NewMemoryStore(theme.Default)
		} else {
			s.store = store
		}
	}
	ts, err := theme.Load(s.store)
	if err != nil {
		s.logger.Warn("theme preference unreadable, using default",
			slog.String("theme", string(ts.Mode())), slog.Any("err", err))
	}
	s.theme = ts

	state, err := view.NewState(s.page)
	if err != nil {
		return nil, err
	}
	s.state = state

	if s.local {
		s.wake = make(chan struct{}, 1)
		s.loop = refresh.NewLoop(s.fetcher, s.url, s.onChange,
			refresh.WithInterval(s.interval),
			refresh.WithWake(s.wake),
			refresh.WithLogger(s.logger),
		)
	}
	return s, nil
}

// URL returns the document URL.
func (s *Session) URL() string {
	return s.url
}

// IsLocal reports whether the document is a file:// URL and is refreshed.
func (s *Session) IsLocal() bool {
	return s.local
}

// Open fetches the document and renders it for the first time.
func (s *Session) Open(ctx context.Context) error {
	text, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpen, s.url, err)
	}
	if _, err := s.render(ctx, text, ReasonOpen); err != nil {
		return err
	}
	if s.loop != nil {
		s.loop.Prime(text)
	}
	return nil
}

// Render runs one render cycle on text. When conversion fails the error is
// logged and returned, and the current view is left as it was.
func (s *Session) Render(ctx context.Context, text string) (*view.Report, error) {
	return s.render(ctx, text, ReasonChange)
}

// Check polls the document once, rendering it if its text changed.
func (s *Session) Check(ctx context.Context) (bool, error) {
	if s.loop == nil {
		return false, nil
	}
	return s.loop.Check(ctx)
}

// Stats returns the refresh loop counters. Remote documents have none.
func (s *Session) Stats() refresh.Stats {
	if s.loop == nil {
		return refresh.Stats{}
	}
	return s.loop.Stats()
}

// Run keeps a local document in sync until ctx is done. It returns
// immediately for remote documents, which are rendered once.
func (s *Session) Run(ctx context.Context) error {
	if s.loop == nil {
		s.logger.Debug("remote document, refresh disabled", slog.String("url", s.url))
		return nil
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case !s.rendered:
		s.mu.Unlock()
		return ErrNotOpened
	case s.running:
		s.mu.Unlock()
		return refresh.ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.watch {
		s.startWatcher(ctx)
	}

	err := s.loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// startWatcher forwards file events to the loop's wake channel. Without a
// watcher the loop still polls.
func (s *Session) startWatcher(ctx context.Context) {
	path, err := fileutil.PathFromFileURL(s.url)
	if err != nil {
		s.logger.Warn("file watcher disabled", slog.Any("err", err))
		return
	}
	w, err := refresh.NewWatcher(path, s.logger)
	if err != nil {
		s.logger.Warn("file watcher disabled", slog.Any("err", err))
		return
	}

	go w.Run(ctx)
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.Wake():
				select {
				case s.wake <- struct{}{}:
				default:
				}
			}
		}
	}()
}

func (s *Session) onChange(ctx context.Context, text string) {
	// render logs its own failures.
	_, _ = s.render(ctx, text, ReasonChange)
}

func (s *Session) render(ctx context.Context, text, reason string) (*view.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	doc := s.preprocessor.Preprocess(text)
	fragment, err := s.converter.Convert(ctx, doc.Text(), pipeline.ConvertOptions{
		BaseURL:         s.baseURL,
		Decorate:        s.decorate,
		DiagramLanguage: s.assembler.DiagramLanguage,
	})
	if err != nil {
		s.logger.Error("conversion failed, keeping previous view",
			slog.String("url", s.url), slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	scroll := s.state.Scroll
	report, err := s.assembler.Assemble(ctx, s.state, fragment, doc.Math, s.theme.Mode())
	if err != nil {
		s.logger.Error("assembly failed", slog.String("url", s.url), slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	s.state.Scroll = scroll

	s.text = text
	s.rendered = true
	s.publishLocked(reason)

	s.logger.Debug("rendered",
		slog.String("url", s.url),
		slog.String("reason", reason),
		slog.Uint64("version", s.version),
		slog.Int("headings", report.Headings),
		slog.Int("math", report.Math),
		slog.Int("math_fallbacks", report.MathFallbacks),
		slog.Int("diagrams", report.Diagrams),
	)
	return report, nil
}

// ToggleTheme switches between light and dark. The new mode is persisted
// first; when persisting fails nothing changes.
func (s *Session) ToggleTheme(ctx context.Context) (theme.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.theme.Mode(), ErrClosed
	}

	mode, err := s.theme.Toggle()
	if err != nil {
		s.logger.Error("theme toggle failed", slog.Any("err", err))
		return mode, err
	}
	if _, err := s.assembler.ApplyTheme(ctx, s.state, mode); err != nil {
		return mode, err
	}
	if s.rendered {
		s.publishLocked(ReasonTheme)
	}
	s.logger.Debug("theme toggled", slog.String("theme", string(mode)))
	return mode, nil
}

// Theme returns the current mode.
func (s *Session) Theme() theme.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme.Mode()
}

// ReportScroll records the viewer's scroll position. It is restored after
// every re-render.
func (s *Session) ReportScroll(scroll view.ScrollState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Scroll = scroll
	s.latest.Scroll = scroll
}

// Scroll returns the last reported scroll position.
func (s *Session) Scroll() view.ScrollState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Scroll
}

// Page renders the full host page.
func (s *Session) Page() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HTML()
}

// Latest returns the last published update; ok is false before Open.
func (s *Session) Latest() (u Update, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.rendered
}

// Snapshot returns an independent copy of the view, for export.
func (s *Session) Snapshot() (*view.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rendered {
		return nil, ErrNotOpened
	}
	return s.state.Clone()
}

// Subscribe returns a channel receiving every update. A subscriber that
// falls behind only sees the newest one. The returned function
// unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	if s.rendered {
		deliver(ch, s.latest)
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Close stops publishing and releases the relay. Subscriber channels are
// closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	if s.ownsFetcher {
		if c, ok := s.fetcher.(interface{ Close() }); ok {
			c.Close()
		}
	}
	return nil
}

// publishLocked bumps the version and sends the view to every subscriber.
func (s *Session) publishLocked(reason string) {
	body, err := s.state.RootHTML()
	if err != nil {
		s.logger.Error("rendering update failed", slog.Any("err", err))
		return
	}
	s.version++
	mode := s.theme.Mode()
	s.latest = Update{
		Type:       UpdateType,
		Version:    s.version,
		Body:       body,
		Theme:      mode,
		Stylesheet: s.assembler.Stylesheets.Stylesheet(mode),
		Scroll:     s.state.Scroll,
		Reason:     reason,
	}
	for ch := range s.subscribers {
		deliver(ch, s.latest)
	}
}

// deliver replaces any pending update in ch with u.
func deliver(ch chan Update, u Update) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- u:
	default:
	}
}
