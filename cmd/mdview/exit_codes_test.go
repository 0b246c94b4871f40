package main

// Notes:
// - exitCodeFor: we test the sentinel errors of every package the CLI
//   surfaces, plus wrapped errors to verify the errors.Is() chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general,
//   2=usage) and that custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/relay"
	"github.com/alnah/go-mdview/internal/theme"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", export.ErrBrowserConnect, ExitBrowser},
		{"page create", export.ErrPageCreate, ExitBrowser},
		{"page load", export.ErrPageLoad, ExitBrowser},
		{"pdf generation", export.ErrPDFGeneration, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("export: %w", export.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"open document", mdview.ErrOpen, ExitIO},
		{"fetch", relay.ErrFetch, ExitIO},
		{"too large", relay.ErrTooLarge, ExitIO},
		{"listen", ErrListen, ExitIO},
		{"read css", ErrReadCSS, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"open wrapping fetch", fmt.Errorf("%w: file:///a.md: %w", mdview.ErrOpen, relay.ErrFetch), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid field", config.ErrInvalidField, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"empty document", mdview.ErrEmptyDocument, ExitUsage},
		{"invalid document", mdview.ErrInvalidDocument, ExitUsage},
		{"unsupported format", export.ErrUnsupportedFormat, ExitUsage},
		{"invalid theme", theme.ErrInvalidMode, ExitUsage},
		{"invalid asset path", assets.ErrInvalidBasePath, ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"too many inputs", ErrTooManyInputs, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"invalid flag", ErrInvalidFlag, ExitUsage},
		{"wrapped invalid field", fmt.Errorf("merge: %w", config.ErrInvalidField), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something broke"), ExitGeneral},
		{"render", mdview.ErrRender, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("custom exit code %d must be below 126", code)
		}
	}
}
