package main

// Notes:
// - resolveExportTarget / documentStem: we test format precedence and
//   output naming for local and remote documents.
// - resolveExportTheme: we test the flag, the saved preference and an
//   unreadable state file.
// - PDF export is not exercised here: it needs a Chrome binary.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/theme"
)

// ---------------------------------------------------------------------------
// TestResolveExportTarget
// ---------------------------------------------------------------------------

func TestResolveExportTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		format     string
		output     string
		docURL     string
		wantFormat export.Format
		wantOutput string
		wantErr    error
	}{
		{"default html next to cwd", "", "", "file:///docs/notes.md", export.FormatHTML, "notes.html", nil},
		{"format flag names output", "pdf", "", "file:///docs/notes.md", export.FormatPDF, "notes.pdf", nil},
		{"output extension", "", "out/report.pdf", "file:///docs/notes.md", export.FormatPDF, "out/report.pdf", nil},
		{"format flag beats extension", "html", "report.pdf", "file:///docs/notes.md", export.FormatHTML, "report.pdf", nil},
		{"remote document", "", "", "https://example.com/guides/setup.markdown?raw=1", export.FormatHTML, "setup.html", nil},
		{"remote without file name", "", "", "https://example.com/", export.FormatHTML, "document.html", nil},
		{"escaped name", "", "", "file:///docs/my%20notes.md", export.FormatHTML, "my notes.html", nil},
		{"unknown format", "docx", "", "file:///docs/notes.md", "", "", export.ErrUnsupportedFormat},
		{"unknown extension", "", "notes.txt", "file:///docs/notes.md", "", "", export.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format, output, err := resolveExportTarget(tt.format, tt.output, tt.docURL)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
			if output != tt.wantOutput {
				t.Errorf("output = %q, want %q", output, tt.wantOutput)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveExportTheme
// ---------------------------------------------------------------------------

func TestResolveExportTheme(t *testing.T) {
	t.Parallel()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("flag", func(t *testing.T) {
		t.Parallel()

		mode, err := resolveExportTheme("Dark", config.DefaultConfig(), discard)
		if err != nil || mode != theme.Dark {
			t.Errorf("resolveExportTheme() = %q, %v; want dark", mode, err)
		}
	})

	t.Run("invalid flag", func(t *testing.T) {
		t.Parallel()

		_, err := resolveExportTheme("sepia", config.DefaultConfig(), discard)
		if !errors.Is(err, theme.ErrInvalidMode) {
			t.Errorf("error = %v, want ErrInvalidMode", err)
		}
	})

	t.Run("saved preference", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Theme.StateFile = filepath.Join(t.TempDir(), "state.yaml")
		if err := os.WriteFile(cfg.Theme.StateFile, []byte("theme: dark\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		mode, err := resolveExportTheme("", cfg, discard)
		if err != nil || mode != theme.Dark {
			t.Errorf("resolveExportTheme() = %q, %v; want dark", mode, err)
		}
	})

	t.Run("unreadable preference falls back", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Theme.StateFile = filepath.Join(t.TempDir(), "state.yaml")
		if err := os.WriteFile(cfg.Theme.StateFile, []byte("theme: sepia\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		mode, err := resolveExportTheme("", cfg, discard)
		if err != nil || mode != theme.Default {
			t.Errorf("resolveExportTheme() = %q, %v; want default", mode, err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestReadExtraCSS / TestWithExportHint
// ---------------------------------------------------------------------------

func TestReadExtraCSS(t *testing.T) {
	t.Parallel()

	if css, err := readExtraCSS(""); err != nil || css != "" {
		t.Errorf("readExtraCSS(\"\") = %q, %v", css, err)
	}

	path := filepath.Join(t.TempDir(), "extra.css")
	if err := os.WriteFile(path, []byte("body{margin:0}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if css, err := readExtraCSS(path); err != nil || css != "body{margin:0}" {
		t.Errorf("readExtraCSS() = %q, %v", css, err)
	}

	_, err := readExtraCSS(filepath.Join(t.TempDir(), "missing.css"))
	if !errors.Is(err, ErrReadCSS) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrReadCSS wrapping os.ErrNotExist", err)
	}
}

func TestWithExportHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", fmt.Errorf("pdf: %w", context.DeadlineExceeded), "--timeout"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := withExportHint(tt.err)
			if !errors.Is(got, tt.err) {
				t.Errorf("hinted error does not wrap %v", tt.err)
			}
			if tt.want == "" {
				if got.Error() != tt.err.Error() {
					t.Errorf("error changed: %q", got)
				}
				return
			}
			if !strings.Contains(got.Error(), tt.want) {
				t.Errorf("error %q missing %q", got, tt.want)
			}
		})
	}

	t.Run("browser keeps the sentinel", func(t *testing.T) {
		t.Parallel()

		got := withExportHint(fmt.Errorf("pdf: %w", export.ErrBrowserConnect))
		if !errors.Is(got, export.ErrBrowserConnect) {
			t.Errorf("hinted error %q lost ErrBrowserConnect", got)
		}
	})
}
