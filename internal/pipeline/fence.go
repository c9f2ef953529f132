package pipeline

import (
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DiagramLanguage is the fenced code info string marking a diagram block.
const DiagramLanguage = "mermaid"

// diagramCodeClass is the class goldmark writes on a diagram block's <code>.
const diagramCodeClass = "language-" + DiagramLanguage

// funcCapture records the render functions a NodeRenderer registers so they
// can be called from another renderer.
type funcCapture struct {
	funcs map[ast.NodeKind]renderer.NodeRendererFunc
}

func (c *funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	c.funcs[kind] = fn
}

// fenceRenderer renders fenced code blocks. Diagram blocks are written as
// plain <pre><code class="language-mermaid"> so the post-processor can find
// them; every other block goes through the syntax highlighter.
type fenceRenderer struct {
	highlight renderer.NodeRendererFunc
}

func newFenceRenderer(opts ...highlighting.Option) *fenceRenderer {
	capture := &funcCapture{funcs: make(map[ast.NodeKind]renderer.NodeRendererFunc)}
	highlighting.NewHTMLRenderer(opts...).RegisterFuncs(capture)
	return &fenceRenderer{highlight: capture.funcs[ast.KindFencedCodeBlock]}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *fenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fenceRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	if !isDiagramLanguage(n.Language(source)) {
		return r.highlight(w, source, node, entering)
	}

	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<pre><code class="` + diagramCodeClass + `">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	return ast.WalkContinue, nil
}

// isDiagramLanguage reports whether a fence info string names a diagram.
func isDiagramLanguage(lang []byte) bool {
	return strings.EqualFold(string(lang), DiagramLanguage)
}
