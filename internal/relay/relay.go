// Package relay fetches the raw bytes of the viewed document.
//
// Requests and responses follow a small message contract so the relay can
// sit behind any transport: {action: "FETCH_FILE", url} in,
// {success: true, data} or {success: false, error} out.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-mdview/internal/fileutil"
)

// ActionFetchFile is the only supported action.
const ActionFetchFile = "FETCH_FILE"

// DefaultMaxSize limits fetched documents (default 16MB).
const DefaultMaxSize = 16 << 20

// Sentinel errors for relay operations.
var (
	ErrUnavailable       = errors.New("relay unavailable")
	ErrUnsupportedAction = errors.New("unsupported relay action")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrFetch             = errors.New("fetch failed")
	ErrTooLarge          = errors.New("document exceeds maximum size")
)

// Request asks the relay for a document.
type Request struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// Response carries the document text or the failure reason.
type Response struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Fetcher returns the current text of the document at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Relay serves fetch requests for file:// and http(s):// documents.
type Relay struct {
	httpClient *http.Client
	maxSize    int64

	mu     sync.RWMutex
	closed bool
}

// Option configures a Relay.
type Option func(*Relay)

// WithHTTPClient sets the client used for http(s) documents.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Relay) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithMaxSize sets the largest accepted document in bytes.
func WithMaxSize(n int64) Option {
	return func(r *Relay) {
		if n > 0 {
			r.maxSize = n
		}
	}
}

// New creates a Relay.
func New(opts ...Option) *Relay {
	r := &Relay{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxSize:    DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle executes req. It never returns an error: failures are reported
// in the response.
func (r *Relay) Handle(ctx context.Context, req Request) Response {
	data, err := r.do(ctx, req)
	if err != nil {
		return failure(err)
	}
	return Response{Success: true, Data: data}
}

// Fetch sends a FETCH_FILE request for rawURL. Unlike Handle it keeps the
// error chain, so callers can match ErrUnavailable, ErrFetch and ErrTooLarge.
func (r *Relay) Fetch(ctx context.Context, rawURL string) (string, error) {
	return r.do(ctx, Request{Action: ActionFetchFile, URL: rawURL})
}

func (r *Relay) do(ctx context.Context, req Request) (string, error) {
	if req.Action != ActionFetchFile {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAction, req.Action)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return "", ErrUnavailable
	}
	return r.fetch(ctx, req.URL)
}

// Close makes the relay permanently unavailable. Later requests fail with
// ErrUnavailable.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.httpClient.CloseIdleConnections()
}

// IsLocal reports whether rawURL names a local file.
func IsLocal(rawURL string) bool {
	return fileutil.IsFileURL(rawURL)
}

func failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

func (r *Relay) fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	switch u.Scheme {
	case "file":
		return r.fetchFile(rawURL)
	case "http", "https":
		return r.fetchHTTP(ctx, rawURL)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (r *Relay) fetchFile(rawURL string) (string, error) {
	path, err := fileutil.PathFromFileURL(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	f, err := os.Open(path) // #nosec G304 -- the viewed document is chosen by the user
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = f.Close() }()

	return r.readLimited(f)
}

func (r *Relay) fetchHTTP(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrFetch, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	return r.readLimited(resp.Body)
}

func (r *Relay) readLimited(rd io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(rd, r.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if int64(len(data)) > r.maxSize {
		return "", fmt.Errorf("%w: max %d bytes", ErrTooLarge, r.maxSize)
	}
	return string(data), nil
}

var _ Fetcher = (*Relay)(nil)
