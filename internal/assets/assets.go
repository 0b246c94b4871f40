package assets

// Built-in asset names.
const (
	StyleLight   = "github-markdown-light"
	StyleDark    = "github-markdown-dark"
	StyleViewer  = "viewer"
	TemplatePage = "page"
	ScriptViewer = "viewer"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS file by name, without the .css extension.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a built-in HTML template by name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// LoadScript loads a built-in script by name.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}
