package staticmd

import (
	"log/slog"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultLang     = "en"
	DefaultDebounce = 150 * time.Millisecond
	DefaultTitle    = "StaticMD Document"

	// exportDiagramPrefix namespaces diagram ids in exported documents.
	exportDiagramPrefix = "diagram-0"
)

// compilerConfig holds the settings applied by Option.
type compilerConfig struct {
	logger      *slog.Logger
	assetPath   string
	math        bool
	lang        string
	concurrency int
}

// Option configures a Compiler.
type Option func(*compilerConfig)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("staticmd: WithLogger logger must not be nil")
	}
	return func(c *compilerConfig) {
		c.logger = l
	}
}

// WithAssetPath overlays a directory of styles and templates on the
// embedded assets. Files found there win; everything else falls back.
func WithAssetPath(path string) Option {
	return func(c *compilerConfig) {
		c.assetPath = path
	}
}

// WithMath enables $inline$ and $$display$$ math rendered to MathML.
func WithMath() Option {
	return func(c *compilerConfig) {
		c.math = true
	}
}

// WithLang sets the lang attribute of exported documents.
func WithLang(lang string) Option {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		panic("staticmd: WithLang language must not be empty")
	}
	return func(c *compilerConfig) {
		c.lang = lang
	}
}

// WithDiagramConcurrency bounds how many diagram blocks of one pass render
// at once.
func WithDiagramConcurrency(n int) Option {
	if n < 1 {
		panic("staticmd: WithDiagramConcurrency must be at least 1")
	}
	return func(c *compilerConfig) {
		c.concurrency = n
	}
}

// previewConfig holds the settings applied by PreviewOption.
type previewConfig struct {
	renderer  DiagramRenderer
	debounce  time.Duration
	assetBase string
}

// PreviewOption configures a Preview.
type PreviewOption func(*previewConfig)

// WithDiagramRenderer renders diagram blocks server-side during preview.
// Without one, diagram blocks stay as source code in preview frames.
func WithDiagramRenderer(r DiagramRenderer) PreviewOption {
	return func(c *previewConfig) {
		c.renderer = r
	}
}

// WithDebounce sets the quiet period between the last update and the
// start of a pass.
func WithDebounce(d time.Duration) PreviewOption {
	if d <= 0 {
		panic("staticmd: WithDebounce duration must be positive")
	}
	return func(c *previewConfig) {
		c.debounce = d
	}
}

// WithAssetBaseURL prefixes relative image and link references in preview
// frames, so a server can resolve them against the document directory.
func WithAssetBaseURL(base string) PreviewOption {
	return func(c *previewConfig) {
		c.assetBase = base
	}
}
