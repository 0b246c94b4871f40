package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds flags that shape how a document is rendered.
type renderFlags struct {
	assetPath       string // Override asset directory
	stateFile       string // Theme preference file
	diagramLanguage string // Fenced code language rendered as diagrams
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	render   renderFlags
	addr     string
	interval string
	watch    bool
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common  commonFlags
	render  renderFlags
	output  string
	format  string
	timeout string
	theme   string
	css     string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.stateFile, "state-file", "", "theme preference file")
	fs.StringVar(&f.diagramLanguage, "diagram-lang", "", "fenced code language rendered as diagrams")
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (host:port)")
	fs.StringVarP(&f.interval, "interval", "i", "", "refresh polling interval (e.g., 500ms, 2s)")
	fs.BoolVarP(&f.watch, "watch", "w", false, "wake on file system events between polls")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &exportFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file")
	fs.StringVarP(&f.format, "format", "f", "", "output format: html, pdf")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.theme, "theme", "", "theme: light, dark (default: saved preference)")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended to the page")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printExportUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
