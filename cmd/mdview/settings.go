package main

import (
	"errors"
	"fmt"

	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/hints"
)

// resolveConfig loads the config file named by the flag or MDVIEW_CONFIG,
// then applies environment overrides. Without a name the built-in defaults
// are used.
func resolveConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(searchedConfigPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// searchedConfigPaths lists the user-level paths tried for a config name.
func searchedConfigPaths(name string) []string {
	var paths []string
	for _, ext := range []string{".yaml", ".yml"} {
		if p, err := config.UserConfigPath(name + ext); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

// mergeRenderFlags applies rendering flags over cfg.
func mergeRenderFlags(f renderFlags, cfg *config.Config) {
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.stateFile != "" {
		cfg.Theme.StateFile = f.stateFile
	}
	if f.diagramLanguage != "" {
		cfg.Diagrams.Language = f.diagramLanguage
	}
}

// mergeServeFlags applies serve flags over cfg and validates the result.
func mergeServeFlags(f *serveFlags, cfg *config.Config) error {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.interval != "" {
		cfg.Refresh.Interval = f.interval
	}
	if f.watch {
		cfg.Refresh.Watch = true
	}
	mergeRenderFlags(f.render, cfg)
	return cfg.Validate()
}

// mergeExportFlags applies export flags over cfg and validates the result.
func mergeExportFlags(f *exportFlags, cfg *config.Config) error {
	if f.timeout != "" {
		cfg.Export.Timeout = f.timeout
	}
	mergeRenderFlags(f.render, cfg)
	return cfg.Validate()
}

// newAssetLoader returns the resolver for cfg.Assets.BasePath.
func newAssetLoader(cfg *config.Config) (*assets.AssetResolver, error) {
	loader, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForAssetPath())
	}
	return loader, nil
}
