// Package server hosts the live view over HTTP.
//
// The host page, its assets and the files next to a local document are
// served by a chi router. Updates reach the browser over a WebSocket; the
// browser reports scroll positions and theme toggles back on the same
// connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/theme"
	"github.com/alnah/go-mdview/internal/view"
)

// FilesPrefix is where files next to a local document are served. A
// session rendering for this server uses FilesPrefix + document name as
// its base URL.
const FilesPrefix = "/files/"

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Viewer is the session surface the server drives.
type Viewer interface {
	Page() (string, error)
	Subscribe() (<-chan mdview.Update, func())
	ToggleTheme(ctx context.Context) (theme.Mode, error)
	ReportScroll(scroll view.ScrollState)
}

// Config configures a Server.
type Config struct {
	// Assets serves stylesheets and scripts. Nil means the embedded assets.
	Assets assets.AssetLoader

	// FilesDir is the directory of a local document. Empty disables /files/.
	FilesDir string

	Logger *slog.Logger
}

// Server is the HTTP host of a viewer session.
type Server struct {
	router   chi.Router
	viewer   Viewer
	assets   assets.AssetLoader
	filesDir string
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server for viewer.
func New(viewer Viewer, cfg Config) *Server {
	s := &Server{
		viewer:   viewer,
		assets:   cfg.Assets,
		filesDir: cfg.FilesDir,
		log:      cfg.Logger,
	}
	if s.assets == nil {
		s.assets = assets.NewEmbeddedLoader()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get("/assets/styles/{name}", s.handleStyle)
	r.Get("/assets/scripts/{name}", s.handleScript)
	r.With(SameOrigin).Post("/api/theme/toggle", s.handleToggleTheme)
	r.Get("/ws", s.handleWebSocket)

	if s.filesDir != "" {
		r.Handle(FilesPrefix+"*", http.StripPrefix(FilesPrefix, http.FileServer(http.Dir(s.filesDir))))
	}

	s.router = r
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.viewer.Page()
	if err != nil {
		s.log.Error("rendering page failed", slog.Any("err", err))
		jsonError(w, "rendering page failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, ".css", "text/css; charset=utf-8", s.assets.LoadStyle)
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, ".js", "text/javascript; charset=utf-8", s.assets.LoadScript)
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, ext, contentType string, load func(string) (string, error)) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "name"), ext)
	if !ok {
		http.NotFound(w, r)
		return
	}
	content, err := load(name)
	if err != nil {
		if isAssetMissing(err) {
			http.NotFound(w, r)
			return
		}
		s.log.Error("loading asset failed", slog.String("name", name), slog.Any("err", err))
		http.Error(w, "loading asset failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(content))
}

func isAssetMissing(err error) bool {
	return errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrScriptNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrPathTraversal)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	mode, err := s.viewer.ToggleTheme(r.Context())
	if err != nil {
		jsonError(w, "toggling theme failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"theme": string(mode)})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
