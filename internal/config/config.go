package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-mdview/internal/fileutil"
	"github.com/alnah/go-mdview/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength     = 255
	MaxPathLength     = 4096
	MaxLanguageLength = 32
)

// MinRefreshInterval keeps polling from spinning on the relay.
const MinRefreshInterval = 100 * time.Millisecond

// Defaults.
const (
	DefaultAddr            = "127.0.0.1:6419"
	DefaultRefreshInterval = "1s"
	DefaultDiagramLanguage = "mermaid"
	DefaultExportTimeout   = "30s"
)

// appDir is the directory name under the user config directory.
const appDir = "go-mdview"

var languagePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Config holds the viewer configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Theme    ThemeConfig    `yaml:"theme"`
	Diagrams DiagramsConfig `yaml:"diagrams"`
	Assets   AssetsConfig   `yaml:"assets"`
	Export   ExportConfig   `yaml:"export"`
}

// ServerConfig defines the host server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // host:port, loopback by default
}

// RefreshConfig defines change detection.
type RefreshConfig struct {
	Interval string `yaml:"interval"` // Go duration, e.g. "1s"
	Watch    bool   `yaml:"watch"`    // wake early on file system events
}

// ThemeConfig defines where the theme preference is persisted.
type ThemeConfig struct {
	StateFile string `yaml:"stateFile"` // empty = user config dir
}

// DiagramsConfig defines diagram materialization.
type DiagramsConfig struct {
	Language string `yaml:"language"` // fenced code language rendered as diagrams
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// ExportConfig defines the export command.
type ExportConfig struct {
	Timeout string `yaml:"timeout"` // Go duration for PDF generation
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Addr: DefaultAddr},
		Refresh:  RefreshConfig{Interval: DefaultRefreshInterval},
		Diagrams: DiagramsConfig{Language: DefaultDiagramLanguage},
		Export:   ExportConfig{Timeout: DefaultExportTimeout},
	}
}

// RefreshInterval returns the parsed polling interval.
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Refresh.Interval)
	if err != nil || d < MinRefreshInterval {
		d, _ = time.ParseDuration(DefaultRefreshInterval)
	}
	return d
}

// ExportTimeout returns the parsed export timeout.
func (c *Config) ExportTimeout() time.Duration {
	d, err := time.ParseDuration(c.Export.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultExportTimeout)
	}
	return d
}

// Validate checks every field. Called by LoadConfig, and by the CLI after
// environment and flag overrides are merged.
func (c *Config) Validate() error {
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
			return fmt.Errorf("%w: server.addr %q: %v", ErrInvalidField, c.Server.Addr, err)
		}
	}

	if c.Refresh.Interval != "" {
		d, err := time.ParseDuration(c.Refresh.Interval)
		if err != nil {
			return fmt.Errorf("%w: refresh.interval %q: %v", ErrInvalidField, c.Refresh.Interval, err)
		}
		if d < MinRefreshInterval {
			return fmt.Errorf("%w: refresh.interval must be at least %s, got %s", ErrInvalidField, MinRefreshInterval, d)
		}
	}

	if err := validateFieldLength("theme.stateFile", c.Theme.StateFile, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("diagrams.language", c.Diagrams.Language, MaxLanguageLength); err != nil {
		return err
	}
	if c.Diagrams.Language != "" && !languagePattern.MatchString(c.Diagrams.Language) {
		return fmt.Errorf("%w: diagrams.language %q (lowercase letters, digits and hyphens)", ErrInvalidField, c.Diagrams.Language)
	}

	if c.Export.Timeout != "" {
		d, err := time.ParseDuration(c.Export.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: export.timeout %q must be a positive duration", ErrInvalidField, c.Export.Timeout)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their defaults. Returns error if the
// file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UserConfigPath returns <user config dir>/go-mdview/<file>.
func UserConfigPath(file string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, file), nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdview/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	for _, ext := range extensions {
		userPath, err := UserConfigPath(name + ext)
		if err != nil {
			break
		}
		if fileutil.FileExists(userPath) {
			return userPath, nil
		}
		triedPaths = append(triedPaths, userPath)
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
