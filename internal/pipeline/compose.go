package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-staticmd/internal/theme"
)

// Mode selects the output target of Compose.
type Mode int

const (
	// ModeInteractive yields a document fragment for a live view. Diagrams
	// are expected to be rendered already and the outline is written out.
	ModeInteractive Mode = iota

	// ModeStatic yields a complete self-contained page. Outline and
	// diagrams are produced at load time by embedded scripts.
	ModeStatic
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeStatic:
		return "static"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// DocumentRootID is the id of the outermost composed element.
const DocumentRootID = "printable-document"

// Segment is converted header or footer markup plus its placement.
// Empty markup contributes nothing, not even placement chrome.
type Segment struct {
	HTML   string
	Sticky bool
}

// present reports whether the segment has content to emit.
func (s Segment) present() bool {
	return strings.TrimSpace(s.HTML) != ""
}

// Layout is everything one render pass hands to Compose.
type Layout struct {
	Title string
	Lang  string

	Presentation theme.Presentation
	Font         theme.Font
	FontSize     int
	BaseCSS      string

	Header Segment
	Footer Segment
	Body   string

	Outline []OutlineEntry

	Diagram         DiagramConfig
	DiagramIDPrefix string
}

// Compose renders layout for the given target. Presentation rules and
// placement are computed once here and serialized per mode, so preview and
// export cannot drift apart.
func Compose(mode Mode, l Layout) (string, error) {
	css := escapeStyleText(BuildStylesheet(StyleParams{
		Presentation:  l.Presentation,
		Font:          l.Font,
		FontSize:      l.FontSize,
		BaseCSS:       l.BaseCSS,
		StickyHeader:  l.Header.present() && l.Header.Sticky,
		StickyFooter:  l.Footer.present() && l.Footer.Sticky,
		IncludeChroma: true,
	}))

	var doc strings.Builder
	writeDocument(&doc, mode, l)

	switch mode {
	case ModeInteractive:
		return "<style>" + css + "</style>\n" + doc.String(), nil
	case ModeStatic:
		return composeStatic(l, css, doc.String())
	default:
		return "", fmt.Errorf("unknown compose mode %d", int(mode))
	}
}

// writeDocument writes the shared document tree:
//
//	div#printable-document
//	  header.doc-header--sticky   (sticky only)
//	  div.doc-flow
//	    header.doc-header         (flow only)
//	    article#document-body
//	    footer.doc-footer         (flow only)
//	  footer.doc-footer--sticky   (sticky only)
//	  nav.doc-outline             (two or more headings)
func writeDocument(w *strings.Builder, mode Mode, l Layout) {
	fmt.Fprintf(w, `<div id="%s" class="%s %s%s" data-mode="%s">`,
		DocumentRootID, rootClass, themeClassPrefix, html.EscapeString(l.Presentation.ID), mode)
	w.WriteString("\n")

	if l.Header.present() && l.Header.Sticky {
		writeSegment(w, "header", headerClass, l.Header)
	}

	fmt.Fprintf(w, `<div class="%s">`, flowClass)
	w.WriteString("\n")
	if l.Header.present() && !l.Header.Sticky {
		writeSegment(w, "header", headerClass, l.Header)
	}
	fmt.Fprintf(w, `<article id="%s" class="%s">`, BodyElementID, proseClass)
	w.WriteString(l.Body)
	w.WriteString("</article>\n")
	if l.Footer.present() && !l.Footer.Sticky {
		writeSegment(w, "footer", footerClass, l.Footer)
	}
	w.WriteString("</div>\n")

	if l.Footer.present() && l.Footer.Sticky {
		writeSegment(w, "footer", footerClass, l.Footer)
	}

	if Navigable(l.Outline) {
		switch mode {
		case ModeStatic:
			fmt.Fprintf(w, `<nav id="%s" class="%s" aria-label="Outline" hidden></nav>`, outlineElementID, outlineClass)
			w.WriteString("\n")
		default:
			writeOutline(w, l.Outline)
		}
	}

	w.WriteString("</div>\n")
}

// writeSegment writes a header or footer element.
func writeSegment(w *strings.Builder, tag, class string, s Segment) {
	classes := class + " " + proseClass
	if s.Sticky {
		classes = class + stickySuffix + " " + class + " " + proseClass
	}
	fmt.Fprintf(w, `<%s class="%s">%s</%s>`, tag, classes, s.HTML, tag)
	w.WriteString("\n")
}

// writeOutline writes a server-side navigation list.
func writeOutline(w *strings.Builder, entries []OutlineEntry) {
	fmt.Fprintf(w, `<nav id="%s" class="%s" aria-label="Outline"><ul>`, outlineElementID, outlineClass)
	for _, e := range entries {
		fmt.Fprintf(w, `<li class="%s%d"><a href="#%s">%s</a></li>`,
			outlineLevelClass, e.Level, html.EscapeString(e.ID), html.EscapeString(e.Text))
	}
	w.WriteString("</ul></nav>\n")
}

// composeStatic wraps the document tree in a standalone page.
// escapeStyleText keeps a custom stylesheet from closing its <style>
// element early.
func escapeStyleText(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

func composeStatic(l Layout, css, body string) (string, error) {
	lang := l.Lang
	if lang == "" {
		lang = "en"
	}

	var w strings.Builder
	w.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&w, "<html lang=\"%s\">\n<head>\n", html.EscapeString(lang))
	w.WriteString("<meta charset=\"utf-8\">\n")
	w.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	w.WriteString("<meta name=\"generator\" content=\"staticmd\">\n")
	fmt.Fprintf(&w, "<title>%s</title>\n", html.EscapeString(l.Title))
	w.WriteString("<link rel=\"preconnect\" href=\"https://fonts.googleapis.com\">\n")
	fmt.Fprintf(&w, "<link rel=\"stylesheet\" href=\"%s\">\n", html.EscapeString(theme.GoogleFontsURL()))
	fmt.Fprintf(&w, "<style>\nhtml, body { margin: 0; padding: 0; background: %s; }\n%s</style>\n",
		l.Presentation.Background, css)
	w.WriteString("</head>\n<body>\n")
	w.WriteString(body)

	if Navigable(l.Outline) {
		w.WriteString("<script>\n")
		w.WriteString(OutlineBootstrap)
		w.WriteString("</script>\n")
	}

	if strings.Contains(l.Body, diagramCodeClass) {
		script, err := DiagramBootstrap(l.Diagram, l.DiagramIDPrefix)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&w, "<script src=\"%s\"></script>\n", MermaidScriptURL)
		w.WriteString("<script>\n")
		w.WriteString(script)
		w.WriteString("</script>\n")
	}

	w.WriteString("</body>\n</html>\n")
	return w.String(), nil
}
