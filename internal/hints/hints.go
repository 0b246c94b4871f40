// Package hints appends actionable advice to CLI error messages.
// Every hint reads "\n  hint: <text>" so it lines up under the error.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdview/internal/fileutil"
)

// appDir is the per-user directory name config files are searched in.
const appDir = "go-mdview"

// ciVariables are set by common CI runners.
var ciVariables = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// IsInContainer detects a Docker-like container by its /.dockerenv marker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect advises on a Chrome that failed to start for PDF export.
// Sandboxing is usually the culprit in CI and containers.
func ForBrowserConnect() string {
	var hints []string

	if sandboxed() && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 in Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to a Chrome or Chromium binary")
	}
	hints = append(hints, "--format html needs no browser")

	return formatHints(hints)
}

func sandboxed() bool {
	for _, name := range ciVariables {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return IsInContainer()
}

// ForTimeout advises on an export that ran out of time.
func ForTimeout() string {
	return format("raise --timeout (or MDVIEW_TIMEOUT) for large documents or a slow browser start")
}

// ForConfigNotFound advises on a missing config file. When one of the
// searched paths lives in the per-user config directory it is offered as
// the place to create one.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "pass --config /path/to/file.yaml or set MDVIEW_CONFIG"
	for _, p := range searchedPaths {
		if filepath.Base(filepath.Dir(p)) == appDir {
			hint += ", or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory advises on an export file that could not be written.
func ForOutputDirectory() string {
	return format("the parent directory of --output must exist and be writable")
}

// ForAddrInUse advises on a listen address that is taken.
func ForAddrInUse(addr string) string {
	return format(addr + " is busy; use --addr with another port, or 127.0.0.1:0 for any free port")
}

// ForDocument advises on a document that could not be opened.
func ForDocument(docURL string) string {
	if fileutil.IsFileURL(docURL) {
		return format("check the file exists and is readable")
	}
	return format("check the URL is reachable; only http://, https:// and local paths are supported")
}

// ForAssetPath advises on an unusable --asset-path.
func ForAssetPath() string {
	return format("the directory should contain styles/, templates/ and scripts/; missing files fall back to the built-in assets")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	return format(strings.Join(hints, "; "))
}
