package assets

// defaultLoader serves the package-level helpers from embedded assets.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a built-in document template by name.
func LoadTemplate(name string) (*DocumentTemplate, error) {
	return defaultLoader.LoadTemplate(name)
}

// ListTemplates loads every template available through loader, in name
// order. A template that fails to decode aborts the listing.
func ListTemplates(loader AssetLoader) ([]DocumentTemplate, error) {
	names, err := loader.TemplateNames()
	if err != nil {
		return nil, err
	}

	out := make([]DocumentTemplate, 0, len(names))
	for _, name := range names {
		tpl, err := loader.LoadTemplate(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *tpl)
	}
	return out, nil
}
