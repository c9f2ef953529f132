package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

// ErrDiagramRender indicates a single diagram block could not be rendered.
var ErrDiagramRender = errors.New("diagram rendering failed")

// DefaultDiagramConcurrency bounds in-flight diagram renders per pass.
const DefaultDiagramConcurrency = 4

// CSS classes and attributes written by the post-processor.
const (
	DiagramClass      = "diagram"
	DiagramErrorClass = "diagram-error"
	diagramErrorAttr  = "data-diagram-error"
	diagramIDAttr     = "data-diagram-id"
)

// DiagramConfig carries the renderer initialization for one pass: the
// palette follows the theme, the label typeface follows the font family.
type DiagramConfig struct {
	Palette    string
	FontFamily string
}

// DiagramRequest is one block handed to a DiagramRenderer.
type DiagramRequest struct {
	ID     string // unique per call, deterministic per pass
	Source string // emphasis markers already stripped
	Config DiagramConfig
}

// DiagramRenderer renders diagram source text to SVG markup.
// Implementations must be safe for concurrent use.
type DiagramRenderer interface {
	RenderDiagram(ctx context.Context, req DiagramRequest) (string, error)
}

// DiagramOutcome records what happened to one block.
type DiagramOutcome struct {
	Index  int
	ID     string
	Source string
	Err    error
}

// DiagramReport lists block outcomes in document order.
type DiagramReport struct {
	Blocks []DiagramOutcome
}

// Failed returns the number of blocks that kept their source form.
func (r DiagramReport) Failed() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Err != nil {
			n++
		}
	}
	return n
}

// DiagramProcessor replaces fenced diagram blocks with rendered graphics.
type DiagramProcessor struct {
	renderer    DiagramRenderer
	concurrency int
}

// NewDiagramProcessor creates a DiagramProcessor. A concurrency below one
// uses DefaultDiagramConcurrency.
func NewDiagramProcessor(r DiagramRenderer, concurrency int) *DiagramProcessor {
	if concurrency < 1 {
		concurrency = DefaultDiagramConcurrency
	}
	return &DiagramProcessor{renderer: r, concurrency: concurrency}
}

// diagramBlock is a located block: its <pre> container and source text.
type diagramBlock struct {
	pre    *html.Node
	source string
}

// Process renders every diagram block of fragment and returns the new
// markup. idPrefix namespaces the per-call ids ("<prefix>-1", "<prefix>-2").
//
// A fragment without diagram blocks is returned byte-for-byte unchanged.
// A block whose render fails keeps its source form, gains DiagramErrorClass
// and does not stop the other blocks. The only error returned is the
// context's, meaning the pass was abandoned.
func (p *DiagramProcessor) Process(ctx context.Context, fragment, idPrefix string, cfg DiagramConfig) (string, DiagramReport, error) {
	if err := ctx.Err(); err != nil {
		return "", DiagramReport{}, err
	}
	if !strings.Contains(fragment, diagramCodeClass) {
		return fragment, DiagramReport{}, nil
	}

	doc, err := parseFragment(fragment)
	if err != nil {
		return fragment, DiagramReport{}, nil
	}
	blocks := findDiagramBlocks(doc)
	if len(blocks) == 0 {
		return fragment, DiagramReport{}, nil
	}

	outcomes := make([]DiagramOutcome, len(blocks))
	svgs := make([]string, len(blocks))

	// Dispatch in document order; each goroutine writes only its own slot,
	// so completion order does not matter.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, b := range blocks {
		id := fmt.Sprintf("%s-%d", idPrefix, i+1)
		src := SanitizeDiagramSource(b.source)
		outcomes[i] = DiagramOutcome{Index: i, ID: id, Source: src}
		g.Go(func() error {
			svg, err := p.renderer.RenderDiagram(gctx, DiagramRequest{ID: id, Source: src, Config: cfg})
			if err == nil && strings.TrimSpace(svg) == "" {
				err = errors.New("renderer returned empty output")
			}
			if err != nil {
				outcomes[i].Err = fmt.Errorf("%w: block %d: %v", ErrDiagramRender, i+1, err)
				return nil
			}
			svgs[i] = svg
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", DiagramReport{}, err
	}

	for i, b := range blocks {
		if outcomes[i].Err != nil {
			markDiagramFailure(b.pre, outcomes[i].Err)
			continue
		}
		replaceWithDiagram(b.pre, outcomes[i].ID, svgs[i])
	}

	out, err := renderFragment(doc)
	if err != nil {
		return fragment, DiagramReport{Blocks: outcomes}, nil
	}
	return out, DiagramReport{Blocks: outcomes}, nil
}

// CountDiagrams returns the number of diagram blocks in fragment.
func CountDiagrams(fragment string) int {
	if !strings.Contains(fragment, diagramCodeClass) {
		return 0
	}
	doc, err := parseFragment(fragment)
	if err != nil {
		return 0
	}
	return len(findDiagramBlocks(doc))
}

// findDiagramBlocks collects <pre><code class="language-mermaid"> blocks in
// document order.
func findDiagramBlocks(root *html.Node) []diagramBlock {
	var blocks []diagramBlock
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Pre {
			return true
		}
		code := n.FirstChild
		for code != nil && code.Type == html.TextNode && strings.TrimSpace(code.Data) == "" {
			code = code.NextSibling
		}
		if code != nil && code.Type == html.ElementNode && code.DataAtom == atom.Code && hasClass(code, diagramCodeClass) {
			blocks = append(blocks, diagramBlock{pre: n, source: textContent(code)})
		}
		return false
	})
	return blocks
}

// replaceWithDiagram swaps pre for a wrapper holding the SVG markup.
// The markup is inserted verbatim; the wrapper caps it to the column width.
func replaceWithDiagram(pre *html.Node, id, svg string) {
	wrapper := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr: []html.Attribute{
			{Key: "class", Val: DiagramClass},
			{Key: diagramIDAttr, Val: id},
			{Key: "style", Val: "max-width:100%;overflow-x:auto"},
		},
	}
	wrapper.AppendChild(&html.Node{Type: html.RawNode, Data: svg})
	pre.Parent.InsertBefore(wrapper, pre)
	pre.Parent.RemoveChild(pre)
}

// markDiagramFailure flags pre so the author sees which block failed.
func markDiagramFailure(pre *html.Node, err error) {
	addClass(pre, DiagramErrorClass)
	setAttr(pre, diagramErrorAttr, err.Error())
	setAttr(pre, "title", err.Error())
}

// Emphasis markers stripped from diagram source. The renderer does not
// understand markdown inline syntax and would draw the literal characters.
// A marker only counts when the marked text neither starts nor ends with
// whitespace, so arrows (*--) and spaced operators (x * y) survive. The
// whitespace set is spelled out to match the browser-side copy exactly.
var (
	boldMarker       = regexp.MustCompile(`\*\*([^* \t\n\f\r](?:[^*\n]*[^* \t\n\f\r])?)\*\*`)
	italicMarker     = regexp.MustCompile(`\*([^* \t\n\f\r](?:[^*\n]*[^* \t\n\f\r])?)\*`)
	underscoreMarker = regexp.MustCompile(`(^|\W)_([^_ \t\n\f\r](?:[^_\n]*[^_ \t\n\f\r])?)_(\W|$)`)
)

// maxUnderscorePasses bounds the re-scan needed for adjacent _a_ _b_ runs,
// where one match consumes the boundary the next one needs.
const maxUnderscorePasses = 8

// SanitizeDiagramSource strips **bold**, *italic* and _underscore_ markers,
// keeping the marked text. Underscores inside identifiers (node_a) are kept.
func SanitizeDiagramSource(src string) string {
	src = boldMarker.ReplaceAllString(src, "$1")
	src = italicMarker.ReplaceAllString(src, "$1")
	for range maxUnderscorePasses {
		next := underscoreMarker.ReplaceAllString(src, "$1$2$3")
		if next == src {
			break
		}
		src = next
	}
	return src
}
