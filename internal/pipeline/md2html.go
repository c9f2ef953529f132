package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhtml "html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// fenceRendererPriority places the diagram-aware fence renderer ahead of
// goldmark's default HTML renderer (1000).
const fenceRendererPriority = 100

// HTMLConverter abstracts Markdown to HTML fragment conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// ConverterOption configures a GoldmarkConverter.
type ConverterOption func(*converterOptions)

type converterOptions struct {
	math bool
}

// WithMath enables $inline$ and $$display$$ LaTeX rendered as MathML.
func WithMath() ConverterOption {
	return func(o *converterOptions) { o.math = true }
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with raw HTML passthrough,
// autolinks, typographic substitutions, GFM and syntax highlighting.
// Fenced blocks tagged as diagrams are left as plain code blocks for the
// diagram post-processor.
func NewGoldmarkConverter(opts ...ConverterOption) *GoldmarkConverter {
	var o converterOptions
	for _, opt := range opts {
		opt(&o)
	}

	exts := []goldmark.Extender{
		extension.GFM,         // Tables, strikethrough, linkify, task lists
		extension.Typographer, // Smart quotes, dashes, ellipses
		extension.Footnote,
	}
	if o.math {
		exts = append(exts, treeblood.MathML())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // Body text may embed raw markup such as sized images
			renderer.WithNodeRenderers(
				util.Prioritized(newFenceRenderer(
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true), // Theme-independent markup, theme CSS supplies colors
					),
				), fenceRendererPriority),
			),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Empty input yields empty output.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if content == "" {
		return "", nil
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, r)}
			}
		}()
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// FallbackFragment renders raw segment text as escaped preformatted content,
// used when conversion of that segment failed.
func FallbackFragment(raw string) string {
	return `<pre class="` + fallbackClass + `">` + stdhtml.EscapeString(raw) + "</pre>\n"
}
