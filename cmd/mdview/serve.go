package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"path/filepath"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/fileutil"
	"github.com/alnah/go-mdview/internal/hints"
	"github.com/alnah/go-mdview/internal/server"
	"github.com/alnah/go-mdview/internal/theme"
)

// runServe opens the document, starts its refresh loop and serves the view
// until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	arg, err := singleDocument(positional)
	if err != nil {
		return err
	}

	warnUnknownEnvVars(env.Stderr, env)
	cfg, err := resolveConfig(flags.common.config, loadEnvConfig(env))
	if err != nil {
		return err
	}
	if err := mergeServeFlags(flags, cfg); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)

	loader, err := newAssetLoader(cfg)
	if err != nil {
		return err
	}
	page, err := loader.LoadTemplate(assets.TemplatePage)
	if err != nil {
		return err
	}

	docURL, err := mdview.DocumentURL(arg)
	if err != nil {
		return err
	}
	opts, filesDir, err := serveOptions(docURL, cfg, logger)
	if err != nil {
		return err
	}
	opts = append(opts, mdview.WithPage(page))

	sess, err := mdview.NewSession(docURL, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Open(ctx); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForDocument(docURL))
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v%s", ErrListen, err, hints.ForAddrInUse(cfg.Server.Addr))
	}

	go func() {
		if err := sess.Run(ctx); err != nil {
			logger.Error("refresh stopped", slog.Any("err", err))
		}
	}()

	viewURL := "http://" + ln.Addr().String() + "/"
	logger.Info("serving",
		slog.String("url", viewURL),
		slog.String("document", docURL),
		slog.String("theme", string(sess.Theme())),
		slog.Bool("refresh", sess.IsLocal()),
		slog.Bool("custom_assets", loader.HasCustomLoader()),
	)
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Viewing %s at %s\n", arg, viewURL)
	}

	srv := server.New(sess, server.Config{
		Assets:   loader,
		FilesDir: filesDir,
		Logger:   logger,
	})
	return srv.Serve(ctx, ln)
}

// serveOptions builds the session options for serving docURL. For a local
// document it also returns the directory served under server.FilesPrefix;
// the base URL points into that prefix so relative images load through the
// server.
func serveOptions(docURL string, cfg *config.Config, logger *slog.Logger) ([]mdview.Option, string, error) {
	store, err := theme.NewFileStore(cfg.Theme.StateFile)
	if err != nil {
		return nil, "", err
	}

	opts := []mdview.Option{
		mdview.WithLogger(logger),
		mdview.WithThemeStore(store),
		mdview.WithInterval(cfg.RefreshInterval()),
		mdview.WithWatch(cfg.Refresh.Watch),
		mdview.WithDiagramLanguage(cfg.Diagrams.Language),
	}

	if !fileutil.IsFileURL(docURL) {
		return opts, "", nil
	}
	path, err := fileutil.PathFromFileURL(docURL)
	if err != nil {
		return nil, "", err
	}
	base := server.FilesPrefix + url.PathEscape(filepath.Base(path))
	return append(opts, mdview.WithBaseURL(base)), filepath.Dir(path), nil
}
