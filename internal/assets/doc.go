// Package assets provides the stylesheets, host page and viewer script
// served alongside a rendered document.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the server and the export command. It
// tries the custom FilesystemLoader first and falls back to EmbeddedLoader
// when the asset is not found, so a directory may override a single file
// while keeping the other defaults.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # github-markdown-light, github-markdown-dark, viewer
//	├── templates/
//	│   └── {name}.html     # page
//	└── scripts/
//	    └── {name}.js       # viewer
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
