package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdview/internal/config"
)

// envPrefix marks the variables this command reads.
const envPrefix = "MDVIEW_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string        // MDVIEW_CONFIG: config file name or path
	Addr       string        // MDVIEW_ADDR: listen address
	Interval   time.Duration // MDVIEW_INTERVAL: refresh polling interval
	Watch      bool          // MDVIEW_WATCH: wake on file system events
	StateFile  string        // MDVIEW_STATE_FILE: theme preference file
	AssetPath  string        // MDVIEW_ASSETS: custom asset directory
	Timeout    time.Duration // MDVIEW_TIMEOUT: export timeout
}

// knownEnvVars lists valid MDVIEW_* environment variables.
var knownEnvVars = map[string]bool{
	"MDVIEW_CONFIG":     true,
	"MDVIEW_ADDR":       true,
	"MDVIEW_INTERVAL":   true,
	"MDVIEW_WATCH":      true,
	"MDVIEW_STATE_FILE": true,
	"MDVIEW_ASSETS":     true,
	"MDVIEW_TIMEOUT":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable durations and booleans are ignored.
func loadEnvConfig(env *Environment) *envConfig {
	cfg := &envConfig{
		ConfigPath: env.getenv("MDVIEW_CONFIG"),
		Addr:       env.getenv("MDVIEW_ADDR"),
		StateFile:  env.getenv("MDVIEW_STATE_FILE"),
		AssetPath:  env.getenv("MDVIEW_ASSETS"),
	}

	if interval := env.getenv("MDVIEW_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			cfg.Interval = d
		}
	}
	if timeout := env.getenv("MDVIEW_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if watch := env.getenv("MDVIEW_WATCH"); watch != "" {
		if b, err := strconv.ParseBool(watch); err == nil {
			cfg.Watch = b
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized MDVIEW_* variable.
func warnUnknownEnvVars(w io.Writer, env *Environment) {
	for _, kv := range env.environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values to cfg.
// A value is only replaced while it still holds its built-in default, so the
// resulting order is: CLI flags > env vars > config file > defaults.
// (CLI flags are applied later via the merge functions.)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" && cfg.Server.Addr == config.DefaultAddr {
		cfg.Server.Addr = env.Addr
	}
	if env.Interval > 0 && cfg.Refresh.Interval == config.DefaultRefreshInterval {
		cfg.Refresh.Interval = env.Interval.String()
	}
	if env.Watch && !cfg.Refresh.Watch {
		cfg.Refresh.Watch = true
	}
	if env.StateFile != "" && cfg.Theme.StateFile == "" {
		cfg.Theme.StateFile = env.StateFile
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Timeout > 0 && cfg.Export.Timeout == config.DefaultExportTimeout {
		cfg.Export.Timeout = env.Timeout.String()
	}
}
