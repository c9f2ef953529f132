package pipeline

import (
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-staticmd/internal/theme"
)

// Class names shared by the stylesheet and the composed markup.
const (
	rootClass         = "staticmd"
	flowClass         = "doc-flow"
	headerClass       = "doc-header"
	footerClass       = "doc-footer"
	stickySuffix      = "--sticky"
	outlineClass      = "doc-outline"
	proseClass        = "markdown-body"
	fallbackClass     = "render-fallback"
	themeClassPrefix  = "theme-"
	outlineLevelClass = "outline-level-"
)

// StyleParams selects the values the stylesheet is built from.
type StyleParams struct {
	Presentation  theme.Presentation
	Font          theme.Font
	FontSize      int
	BaseCSS       string
	StickyHeader  bool
	StickyFooter  bool
	IncludeChroma bool
}

// BuildStylesheet assembles the complete stylesheet for one render pass.
// Both output targets embed the same rules; nothing here depends on mode.
// Order matters: theme variables first, base rules, then overrides.
func BuildStylesheet(p StyleParams) string {
	var buf strings.Builder

	buf.WriteString(buildThemeVarsCSS(p.Presentation, p.Font, p.FontSize))
	if p.BaseCSS != "" {
		buf.WriteString("\n")
		buf.WriteString(p.BaseCSS)
	}
	if p.Presentation.Ruled {
		buf.WriteString(buildRuledCSS(p.Presentation))
	}
	buf.WriteString(buildPlacementCSS(p.StickyHeader, p.StickyFooter))
	buf.WriteString(buildPageBreaksCSS())
	if p.IncludeChroma {
		buf.WriteString(buildCodeStyleCSS(p.Presentation.CodeStyle))
	}
	return buf.String()
}

// buildThemeVarsCSS writes the resolved presentation as literal values
// on the document root.
func buildThemeVarsCSS(pr theme.Presentation, f theme.Font, size int) string {
	if size <= 0 {
		size = theme.DefaultFontSize
	}
	return fmt.Sprintf(`
/* Theme: %s */
.%s {
  --doc-bg: %s;
  --doc-text: %s;
  --doc-accent: %s;
  --doc-muted: %s;
  --doc-border: %s;
  --doc-code-bg: %s;
  --doc-code-text: %s;
  background: var(--doc-bg);
  color: var(--doc-text);
  font-family: %s;
  font-size: %dpx;
  line-height: %s;
  position: relative;
  min-height: 100%%;
}
.%s .%s {
  max-width: %s;
  margin: 0 auto;
  padding: %s;
}
`, pr.ID, rootClass, pr.Background, pr.Text, pr.Accent, pr.Muted, pr.Border,
		pr.CodeBackground, pr.CodeText, escapeCSSValue(f.Stack), size, pr.LineHeight,
		rootClass, flowClass, pr.ContainerMaxWidth, pr.ContainerPadding)
}

// buildRuledCSS generates the notebook background: horizontal rules every
// RuleHeight plus a vertical margin rule, with block spacing snapped to the
// rule height so text sits on the lines.
func buildRuledCSS(pr theme.Presentation) string {
	return fmt.Sprintf(`
/* Ruled paper */
.%[1]s%[2]s .%[3]s {
  background-image:
    linear-gradient(to right, transparent 3rem, %[4]s 3rem, %[4]s calc(3rem + 2px), transparent calc(3rem + 2px)),
    repeating-linear-gradient(to bottom, transparent 0, transparent calc(%[5]s - 1px), %[6]s calc(%[5]s - 1px), %[6]s %[5]s);
  background-attachment: local;
  padding-left: 4.5rem;
  line-height: %[5]s;
}
.%[1]s%[2]s .%[3]s p,
.%[1]s%[2]s .%[3]s ul,
.%[1]s%[2]s .%[3]s ol,
.%[1]s%[2]s .%[3]s pre,
.%[1]s%[2]s .%[3]s blockquote,
.%[1]s%[2]s .%[3]s table {
  margin: 0 0 %[5]s 0;
}
.%[1]s%[2]s .%[3]s h1,
.%[1]s%[2]s .%[3]s h2,
.%[1]s%[2]s .%[3]s h3 {
  line-height: %[5]s;
  margin: %[5]s 0 0 0;
}
`, themeClassPrefix, pr.ID, flowClass, pr.MarginRule, pr.RuleHeight, pr.RuleColor)
}

// buildPlacementCSS pins sticky segments. On screen they stick to the top or
// bottom of the viewport; in print they are fixed to the page box so they
// repeat on every physical page.
func buildPlacementCSS(stickyHeader, stickyFooter bool) string {
	if !stickyHeader && !stickyFooter {
		return ""
	}

	var screen, paper strings.Builder
	screen.WriteString("\n/* Sticky placement */\n")
	paper.WriteString("\n/* Sticky placement: repeat on every printed page */\n@media print {\n")

	if stickyHeader {
		fmt.Fprintf(&screen, `.%s%s {
  position: sticky;
  top: 0;
  z-index: 10;
  background: var(--doc-bg);
  border-bottom: 1px solid var(--doc-border);
}
`, headerClass, stickySuffix)
		fmt.Fprintf(&paper, `  .%s%s {
    position: fixed;
    top: 0;
    left: 0;
    right: 0;
    border-bottom: none;
  }
  .%s { padding-top: 4rem; }
`, headerClass, stickySuffix, flowClass)
	}
	if stickyFooter {
		fmt.Fprintf(&screen, `.%s%s {
  position: sticky;
  bottom: 0;
  z-index: 10;
  background: var(--doc-bg);
  border-top: 1px solid var(--doc-border);
}
`, footerClass, stickySuffix)
		fmt.Fprintf(&paper, `  .%s%s {
    position: fixed;
    bottom: 0;
    left: 0;
    right: 0;
    border-top: none;
  }
  .%s { padding-bottom: 4rem; }
`, footerClass, stickySuffix, flowClass)
	}

	paper.WriteString("}\n")
	return screen.String() + paper.String()
}

// buildPageBreaksCSS keeps headings with their content, prints backgrounds
// and hides interactive chrome on paper.
func buildPageBreaksCSS() string {
	return fmt.Sprintf(`
/* Page breaks: prevent heading alone at page bottom */
h1, h2, h3, h4, h5, h6 {
  break-after: avoid;
  page-break-after: avoid;
  break-inside: avoid;
  page-break-inside: avoid;
}
p, li, dd, dt, blockquote {
  orphans: 2;
  widows: 2;
}
pre, .%s, table, img {
  break-inside: avoid;
  page-break-inside: avoid;
}
@page {
  margin: 15mm;
}
@media print {
  .%s {
    -webkit-print-color-adjust: exact;
    print-color-adjust: exact;
  }
  .%s { display: none; }
}
`, DiagramClass, rootClass, outlineClass)
}

// buildCodeStyleCSS returns chroma's class-based rules for the named style.
// Unknown names fall back to chroma's default style.
func buildCodeStyleCSS(name string) string {
	var buf strings.Builder
	buf.WriteString("\n/* Code highlighting: " + name + " */\n")
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return ""
	}
	return buf.String()
}

// escapeCSSValue strips characters that could close a declaration.
func escapeCSSValue(s string) string {
	return strings.NewReplacer(";", "", "{", "", "}", "", "<", "", ">", "").Replace(s)
}
