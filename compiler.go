package staticmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-staticmd/internal/assets"
	"github.com/alnah/go-staticmd/internal/pipeline"
	"github.com/alnah/go-staticmd/internal/theme"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ DiagramRenderer               = (*RodDiagramRenderer)(nil)
)

// Segment names, as reported in Result.Fallbacks.
const (
	SegmentHeader = "header"
	SegmentBody   = "body"
	SegmentFooter = "footer"
)

// Compiler runs render passes. A Compiler holds no per-document state and
// is safe for concurrent use; every pass converts its input from scratch.
type Compiler struct {
	cfg          compilerConfig
	loader       assets.AssetLoader
	baseCSS      string
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
}

// NewCompiler creates a Compiler.
// Returns error if the asset path is invalid or the base stylesheet cannot
// be loaded.
func NewCompiler(opts ...Option) (*Compiler, error) {
	cfg := compilerConfig{
		lang:        DefaultLang,
		concurrency: pipeline.DefaultDiagramConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	resolver, err := assets.NewAssetResolver(cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	baseCSS, err := resolver.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading base style: %w", err)
	}

	var convOpts []pipeline.ConverterOption
	if cfg.math {
		convOpts = append(convOpts, pipeline.WithMath())
	}

	return &Compiler{
		cfg:          cfg,
		loader:       resolver,
		baseCSS:      baseCSS,
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(convOpts...),
	}, nil
}

// Compile renders in as one self-contained static document. Diagram
// blocks are left as source and rendered by the document's own bootstrap
// when it loads. Recovers from internal panics so a bad document cannot
// crash the caller.
func (c *Compiler) Compile(ctx context.Context, in Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()
	res, err := c.render(ctx, in, renderPass{
		mode:     pipeline.ModeStatic,
		idPrefix: exportDiagramPrefix,
	})
	if err != nil {
		return nil, err
	}
	c.cfg.logger.Debug("export compiled",
		slog.Int("bytes", len(res.HTML)),
		slog.Int("headings", len(res.Outline)),
		slog.Int("diagrams", res.Diagrams),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

// Templates lists the available document templates, custom ones included.
func (c *Compiler) Templates() ([]Template, error) {
	list, err := assets.ListTemplates(c.loader)
	if err != nil {
		return nil, err
	}
	out := make([]Template, len(list))
	for i, t := range list {
		out[i] = Template{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			Header:         t.Header.Text,
			HeaderPosition: Position(t.Header.Position),
			Footer:         t.Footer.Text,
			FooterPosition: Position(t.Footer.Position),
			Body:           t.Body,
		}
	}
	return out, nil
}

// renderPass parameterizes one pass over the shared pipeline.
type renderPass struct {
	mode      pipeline.Mode
	idPrefix  string
	diagrams  *pipeline.DiagramProcessor // nil leaves diagram blocks as source
	assetBase string
}

// render runs conversion, diagram processing, outline extraction and
// composition for one input snapshot. Only configuration errors and
// cancellation are returned; segment and block failures are contained.
func (c *Compiler) render(ctx context.Context, in Input, pass renderPass) (*Result, error) {
	in, err := c.applyTemplate(in)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	pr, err := theme.Resolve(string(in.Theme))
	if err != nil {
		return nil, err
	}
	font, err := theme.ResolveFont(in.FontFamily)
	if err != nil {
		return nil, err
	}
	dcfg := pipeline.DiagramConfig{Palette: pr.DiagramPalette, FontFamily: font.Name}

	res := &Result{}
	convert := func(name, src string) (string, error) {
		out, err := c.convertSegment(ctx, src)
		if err == nil {
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.cfg.logger.Warn("segment conversion failed, rendering as text",
			slog.String("segment", name), slog.Any("error", err))
		res.Fallbacks = append(res.Fallbacks, name)
		return pipeline.FallbackFragment(src), nil
	}

	header, err := convert(SegmentHeader, in.Header)
	if err != nil {
		return nil, err
	}
	body, err := convert(SegmentBody, in.Body)
	if err != nil {
		return nil, err
	}
	footer, err := convert(SegmentFooter, in.Footer)
	if err != nil {
		return nil, err
	}

	if pass.diagrams != nil {
		var report pipeline.DiagramReport
		body, report, err = pass.diagrams.Process(ctx, body, pass.idPrefix, dcfg)
		if err != nil {
			return nil, err
		}
		res.Diagrams = len(report.Blocks)
		res.FailedDiagrams = report.Failed()
		for _, b := range report.Blocks {
			if b.Err != nil {
				c.cfg.logger.Warn("diagram render failed",
					slog.String("id", b.ID), slog.Int("block", b.Index+1), slog.Any("error", b.Err))
			}
		}
	} else {
		res.Diagrams = pipeline.CountDiagrams(body)
	}

	if pass.assetBase != "" {
		for _, seg := range []*string{&header, &body, &footer} {
			if rewritten, err := pipeline.RewriteRelativeURLs(*seg, pass.assetBase); err == nil {
				*seg = rewritten
			}
		}
	}

	withIDs, outline, err := pipeline.ExtractOutline(body)
	if err != nil {
		c.cfg.logger.Warn("outline extraction failed", slog.Any("error", err))
	} else {
		body = withIDs
	}
	res.Outline = outline
	res.Title = documentTitle(outline)

	size := in.FontSize
	if size == 0 {
		size = DefaultFontSize
	}

	res.HTML, err = pipeline.Compose(pass.mode, pipeline.Layout{
		Title:           res.Title,
		Lang:            c.cfg.lang,
		Presentation:    pr,
		Font:            font,
		FontSize:        size,
		BaseCSS:         c.baseCSS,
		Header:          pipeline.Segment{HTML: header, Sticky: in.HeaderPosition.Sticky()},
		Footer:          pipeline.Segment{HTML: footer, Sticky: in.FooterPosition.Sticky()},
		Body:            body,
		Outline:         outline,
		Diagram:         dcfg,
		DiagramIDPrefix: pass.idPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("composing document: %w", err)
	}
	return res, nil
}

// convertSegment preprocesses and converts one segment. Segments are
// converted independently; no state carries from one to the next.
func (c *Compiler) convertSegment(ctx context.Context, src string) (string, error) {
	md := c.preprocessor.PreprocessMarkdown(ctx, src)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.converter.ToHTML(ctx, md)
}

// applyTemplate fills empty header, footer, body and positions from the
// named template. Explicit input always wins.
func (c *Compiler) applyTemplate(in Input) (Input, error) {
	if in.Template == "" {
		return in, nil
	}
	tmpl, err := c.loader.LoadTemplate(in.Template)
	if err != nil {
		return in, err
	}
	if in.Header == "" {
		in.Header = tmpl.Header.Text
		if in.HeaderPosition == "" {
			in.HeaderPosition = Position(tmpl.Header.Position)
		}
	}
	if in.Footer == "" {
		in.Footer = tmpl.Footer.Text
		if in.FooterPosition == "" {
			in.FooterPosition = Position(tmpl.Footer.Position)
		}
	}
	if in.Body == "" {
		in.Body = tmpl.Body
	}
	return in, nil
}

// documentTitle returns the text of the first h1, or DefaultTitle.
func documentTitle(outline []OutlineEntry) string {
	for _, e := range outline {
		if e.Level == 1 && e.Text != "" {
			return e.Text
		}
	}
	return DefaultTitle
}

var defaultCompiler = sync.OnceValues(func() (*Compiler, error) {
	return NewCompiler()
})

// CompileDocument renders one exported document with the default compiler.
// It is deterministic for identical inputs.
func CompileDocument(body string, themeID ThemeID, header, footer, fontFamily string, fontSize int, headerPos, footerPos Position) (string, error) {
	c, err := defaultCompiler()
	if err != nil {
		return "", err
	}
	res, err := c.Compile(context.Background(), Input{
		Body:           body,
		Header:         header,
		Footer:         footer,
		Theme:          themeID,
		FontFamily:     fontFamily,
		FontSize:       fontSize,
		HeaderPosition: headerPos,
		FooterPosition: footerPos,
	})
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// IsConfigError reports whether err rejects the input itself, as opposed
// to a failure while rendering it.
func IsConfigError(err error) bool {
	for _, target := range []error{ErrUnknownTheme, ErrUnknownFont, ErrInvalidFontSize, ErrInvalidPosition, ErrTemplateNotFound, assets.ErrInvalidTemplate, assets.ErrInvalidAssetName} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
