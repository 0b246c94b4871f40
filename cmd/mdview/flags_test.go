package main

// Notes:
// - parseServeFlags / parseExportFlags: we test long and short forms,
//   positional arguments, --help and unknown flags.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseServeFlags
// ---------------------------------------------------------------------------

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	t.Run("long flags", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		f, args, err := parseServeFlags([]string{
			"--addr", "127.0.0.1:0",
			"--interval", "2s",
			"--watch",
			"--asset-path", "/assets",
			"--state-file", "/state.yaml",
			"--diagram-lang", "graph",
			"--config", "work",
			"--verbose",
			"notes.md",
		}, &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if f.addr != "127.0.0.1:0" || f.interval != "2s" || !f.watch {
			t.Errorf("server flags = %+v", f)
		}
		if f.render != (renderFlags{assetPath: "/assets", stateFile: "/state.yaml", diagramLanguage: "graph"}) {
			t.Errorf("render flags = %+v", f.render)
		}
		if f.common.config != "work" || !f.common.verbose || f.common.quiet {
			t.Errorf("common flags = %+v", f.common)
		}
		if len(args) != 1 || args[0] != "notes.md" {
			t.Errorf("args = %v, want [notes.md]", args)
		}
	})

	t.Run("short flags", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		f, args, err := parseServeFlags([]string{"notes.md", "-a", ":7000", "-i", "500ms", "-w", "-q"}, &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.addr != ":7000" || f.interval != "500ms" || !f.watch || !f.common.quiet {
			t.Errorf("flags = %+v", f)
		}
		if len(args) != 1 {
			t.Errorf("args = %v, want one document", args)
		}
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _, err := parseServeFlags([]string{"--help"}, &buf)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("error = %v, want flag.ErrHelp", err)
		}
		if !strings.Contains(buf.String(), "Usage: mdview serve") {
			t.Errorf("usage not printed: %q", buf.String())
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, _, err := parseServeFlags([]string{"--nope"}, &buf); err == nil {
			t.Fatal("expected error for unknown flag")
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseExportFlags
// ---------------------------------------------------------------------------

func TestParseExportFlags(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f, args, err := parseExportFlags([]string{
		"-o", "out.pdf", "-f", "pdf", "-t", "1m",
		"--theme", "dark", "--css", "extra.css",
		"--diagram-lang", "mermaid",
		"notes.md",
	}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.output != "out.pdf" || f.format != "pdf" || f.timeout != "1m" {
		t.Errorf("output flags = %+v", f)
	}
	if f.theme != "dark" || f.css != "extra.css" {
		t.Errorf("theme/css = %q/%q", f.theme, f.css)
	}
	if f.render.diagramLanguage != "mermaid" {
		t.Errorf("diagramLanguage = %q", f.render.diagramLanguage)
	}
	if len(args) != 1 || args[0] != "notes.md" {
		t.Errorf("args = %v, want [notes.md]", args)
	}
}
