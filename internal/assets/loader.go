package assets

// AssetLoader defines the contract for loading the base stylesheet and
// document templates.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a document template by name (without .yaml extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidTemplate if the file cannot be decoded.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (*DocumentTemplate, error)

	// TemplateNames lists available template names in sorted order.
	TemplateNames() ([]string, error)
}
