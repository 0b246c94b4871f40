package theme

// DefaultStylesheetPrefix is where the host server exposes theme stylesheets.
const DefaultStylesheetPrefix = "/assets/styles/"

// StylesheetResolver maps a mode to the URL of its stylesheet.
type StylesheetResolver interface {
	Stylesheet(mode Mode) string
}

// AssetStylesheets resolves modes to github-markdown-<mode>.css under Prefix.
type AssetStylesheets struct {
	Prefix string
}

// StyleName returns the asset name of the mode's stylesheet.
func StyleName(mode Mode) string {
	return "github-markdown-" + string(mode)
}

func (a AssetStylesheets) Stylesheet(mode Mode) string {
	prefix := a.Prefix
	if prefix == "" {
		prefix = DefaultStylesheetPrefix
	}
	return prefix + StyleName(mode) + ".css"
}

var _ StylesheetResolver = AssetStylesheets{}
