package assets

import "errors"

// AssetResolver looks assets up in a custom directory first and falls back
// to the embedded set for anything the directory does not provide. Invalid
// names and read failures are returned as-is, without falling back.
type AssetResolver struct {
	layers []AssetLoader // searched in order; embedded is always last
	custom bool
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath means
// embedded assets only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		dir, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, dir)
		r.custom = true
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

// LoadStyle loads a stylesheet from the first layer that has it.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(styleKind, func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate loads a page template from the first layer that has it.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(templateKind, func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

// LoadScript loads a script from the first layer that has it.
func (r *AssetResolver) LoadScript(name string) (string, error) {
	return r.first(scriptKind, func(l AssetLoader) (string, error) { return l.LoadScript(name) })
}

func (r *AssetResolver) first(k kind, load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		if content, err = load(l); !errors.Is(err, k.notFound) {
			return content, err
		}
	}
	return "", err
}

// HasCustomLoader reports whether a custom asset directory is in use.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom
}

var _ AssetLoader = (*AssetResolver)(nil)
