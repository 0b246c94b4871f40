// Package refresh keeps a rendered document in sync with its source.
//
// A Loop polls a relay.Fetcher at a fixed interval and calls OnChange
// whenever the fetched text differs from the last rendered text. At most
// one fetch is outstanding: ticks arriving while a fetch is in flight are
// skipped.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-mdview/internal/relay"
)

// DefaultInterval is the polling period.
const DefaultInterval = time.Second

// ErrAlreadyRunning indicates Run was called on a running loop.
var ErrAlreadyRunning = errors.New("refresh loop already running")

// State is the loop's position in a polling cycle.
type State int

const (
	Idle State = iota
	Checking
)

// String returns "idle" or "checking".
func (s State) String() string {
	if s == Checking {
		return "checking"
	}
	return "idle"
}

// ChangeFunc receives document text that differs from the last rendered
// text. It runs on the loop goroutine.
type ChangeFunc func(ctx context.Context, text string)

// Stats counts what the loop has done since it was created.
type Stats struct {
	Fetches  int // fetches started
	Failures int // fetches that returned an error
	Changes  int // OnChange calls
	Skipped  int // ticks ignored because a fetch was in flight
}

// Loop polls a document for changes.
type Loop struct {
	fetcher  relay.Fetcher
	url      string
	onChange ChangeFunc
	interval time.Duration
	wake     <-chan struct{}
	logger   *slog.Logger

	// newTicker is replaced in tests.
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	last    string
	state   State
	running bool
	stats   Stats
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the polling period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithWake adds a channel whose receives are treated like ticks.
func WithWake(ch <-chan struct{}) Option {
	return func(l *Loop) {
		l.wake = ch
	}
}

// WithLogger sets the logger. Fetch failures are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop creates a loop polling url through fetcher.
func NewLoop(fetcher relay.Fetcher, url string, onChange ChangeFunc, opts ...Option) *Loop {
	l := &Loop{
		fetcher:  fetcher,
		url:      url,
		onChange: onChange,
		interval: DefaultInterval,
		logger:   slog.Default(),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Prime records text as the last rendered text.
func (l *Loop) Prime(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = text
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stats returns a snapshot of the counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Interval returns the polling period.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Check fetches once and calls OnChange if the text changed. It reports
// whether a change was delivered. Check does not start while another
// fetch is in flight.
func (l *Loop) Check(ctx context.Context) (bool, error) {
	if !l.begin() {
		return false, nil
	}
	text, err := l.fetcher.Fetch(ctx, l.url)
	return l.finish(ctx, text, err), err
}

// Run polls until ctx is done. A fetch still in flight when Run returns
// is abandoned and its result dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.state = Idle
		l.mu.Unlock()
	}()

	ticks, stop := l.newTicker(l.interval)
	defer stop()

	type result struct {
		text string
		err  error
	}
	results := make(chan result, 1)

	start := func() {
		if !l.begin() {
			l.logger.Debug("refresh tick skipped", slog.String("url", l.url))
			return
		}
		go func() {
			text, err := l.fetcher.Fetch(ctx, l.url)
			results <- result{text: text, err: err}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			start()
		case <-l.wake:
			start()
		case r := <-results:
			l.finish(ctx, r.text, r.err)
		}
	}
}

// begin moves the loop to Checking. It returns false, counting a skipped
// tick, when a fetch is already in flight.
func (l *Loop) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Checking {
		l.stats.Skipped++
		return false
	}
	l.state = Checking
	l.stats.Fetches++
	return true
}

// finish returns the loop to Idle and delivers text if it changed.
func (l *Loop) finish(ctx context.Context, text string, err error) bool {
	l.mu.Lock()
	l.state = Idle
	if err != nil {
		l.stats.Failures++
		l.mu.Unlock()
		l.logger.Debug("refresh fetch failed", slog.String("url", l.url), slog.Any("err", err))
		return false
	}
	if ctx.Err() != nil || text == l.last {
		l.mu.Unlock()
		return false
	}
	l.last = text
	l.stats.Changes++
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(ctx, text)
	}
	return true
}
