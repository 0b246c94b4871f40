package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/hints"
	"github.com/alnah/go-mdview/internal/theme"
)

// outputPermissions is the mode of exported files.
const outputPermissions = 0o644

// defaultStem names the output when the document URL has no file name.
const defaultStem = "document"

// runExport renders the document once and writes a standalone copy.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
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
	if err := mergeExportFlags(flags, cfg); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)

	docURL, err := mdview.DocumentURL(arg)
	if err != nil {
		return err
	}
	format, output, err := resolveExportTarget(flags.format, flags.output, docURL)
	if err != nil {
		return err
	}
	mode, err := resolveExportTheme(flags.theme, cfg, logger)
	if err != nil {
		return err
	}
	extraCSS, err := readExtraCSS(flags.css)
	if err != nil {
		return err
	}

	loader, err := newAssetLoader(cfg)
	if err != nil {
		return err
	}
	page, err := loader.LoadTemplate(assets.TemplatePage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ExportTimeout())
	defer cancel()

	// The export never changes the saved preference.
	sess, err := mdview.NewSession(docURL,
		mdview.WithLogger(logger),
		mdview.WithThemeStore(theme.NewMemoryStore(mode)),
		mdview.WithPage(page),
		mdview.WithDiagramLanguage(cfg.Diagrams.Language),
	)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Open(ctx); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForDocument(docURL))
	}
	snapshot, err := sess.Snapshot()
	if err != nil {
		return err
	}

	exporter := &export.Exporter{Assets: loader, ExtraCSS: extraCSS}
	if format == export.FormatPDF {
		exporter.PDF = export.NewPDFConverter(export.NewRodRenderer(cfg.ExportTimeout()))
	}
	defer func() { _ = exporter.Close() }()

	data, err := exporter.Export(ctx, snapshot, format)
	if err != nil {
		return withExportHint(err)
	}

	if err := os.WriteFile(output, data, outputPermissions); err != nil { // #nosec G306 -- exported documents are meant to be shared
		return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}

	logger.Debug("exported",
		slog.String("output", output),
		slog.String("format", string(format)),
		slog.Int("bytes", len(data)),
	)
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", output)
	}
	return nil
}

// resolveExportTarget decides the format and output path. An explicit
// format wins, then the output extension, then HTML. Without an output the
// document name is reused with the format's extension, in the current
// directory.
func resolveExportTarget(flagFormat, flagOutput, docURL string) (export.Format, string, error) {
	var format export.Format
	var err error
	switch {
	case flagFormat != "":
		format, err = export.ParseFormat(flagFormat)
	case flagOutput != "":
		format, err = export.FormatFromPath(flagOutput)
	default:
		format = export.FormatHTML
	}
	if err != nil {
		return "", "", err
	}

	if flagOutput != "" {
		return format, flagOutput, nil
	}
	return format, documentStem(docURL) + "." + string(format), nil
}

// documentStem returns the document file name without its extension.
func documentStem(docURL string) string {
	u, err := url.Parse(docURL)
	if err != nil {
		return defaultStem
	}
	base := path.Base(u.Path)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		return defaultStem
	}
	return stem
}

// resolveExportTheme returns the theme named by the flag, or the saved
// preference.
func resolveExportTheme(flagTheme string, cfg *config.Config, logger *slog.Logger) (theme.Mode, error) {
	if flagTheme != "" {
		return theme.ParseMode(flagTheme)
	}
	store, err := theme.NewFileStore(cfg.Theme.StateFile)
	if err != nil {
		logger.Warn("saved theme unavailable, using default", slog.Any("err", err))
		return theme.Default, nil
	}
	state, err := theme.Load(store)
	if err != nil {
		logger.Warn("saved theme unreadable, using default", slog.Any("err", err))
	}
	return state.Mode(), nil
}

// readExtraCSS reads the --css file, if any.
func readExtraCSS(cssPath string) (string, error) {
	if cssPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(cssPath) // #nosec G304 -- CSS path is user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return string(data), nil
}

// withExportHint attaches a hint to browser and timeout failures.
func withExportHint(err error) error {
	switch {
	case errors.Is(err, export.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	}
	return err
}
