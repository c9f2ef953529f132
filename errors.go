package staticmd

import (
	"errors"

	"github.com/alnah/go-staticmd/internal/assets"
	"github.com/alnah/go-staticmd/internal/pipeline"
	"github.com/alnah/go-staticmd/internal/theme"
)

// Sentinel errors for library operations.
var (
	// Configuration errors reject a render request before any conversion.
	ErrUnknownTheme     = theme.ErrUnknownTheme
	ErrUnknownFont      = theme.ErrUnknownFont
	ErrInvalidFontSize  = errors.New("invalid font size")
	ErrInvalidPosition  = errors.New("invalid placement")
	ErrTemplateNotFound = assets.ErrTemplateNotFound
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Rendering errors are contained to one segment or one diagram block.
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrDiagramRender  = pipeline.ErrDiagramRender

	// Browser errors come from the headless diagram renderer.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrRendererClosed = errors.New("diagram renderer closed")

	ErrPreviewClosed = errors.New("preview closed")
)
