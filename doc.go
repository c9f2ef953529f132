// Package staticmd renders an authored document (a markdown body plus
// optional header and footer) into a themed live preview and into one
// self-contained static HTML page that reproduces it.
//
// # Quick Start
//
// Export a document with the default compiler:
//
//	page, err := staticmd.CompileDocument("# Title\n\nHello",
//	    staticmd.ThemeSepia, "", "", staticmd.FontSerif, 18,
//	    staticmd.PositionFlow, staticmd.PositionFlow)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("static-page-sepia.html", []byte(page), 0o644)
//
// # Render Pipeline
//
// Each pass converts its input from scratch:
//
//  1. Markdown preprocessing (line endings, ==highlight== syntax)
//  2. Markdown to HTML via Goldmark, run separately for header, body and footer
//  3. Diagram blocks (```mermaid) rendered to SVG in place, preview only
//  4. Outline extraction: h1-h3 receive ids section-1, section-2, ...
//  5. Composition of the shared document tree in interactive or static mode
//
// The exported page embeds its stylesheet and two small bootstraps that
// build the outline and render diagrams when the page loads.
//
// # Live Preview
//
// A Preview re-renders after a short quiet period following each Update.
// Passes are tagged with a generation; a pass finishing after a newer one
// started is discarded:
//
//	c, _ := staticmd.NewCompiler()
//	r := staticmd.NewRodDiagramRenderer()
//	defer r.Close()
//
//	p, err := staticmd.NewPreview(c, staticmd.Input{Body: src},
//	    staticmd.WithDiagramRenderer(r))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	frames, unsubscribe := p.Subscribe()
//	defer unsubscribe()
//	for f := range frames {
//	    fmt.Println(f.Generation, len(f.Outline))
//	}
//
// # Errors
//
// Unknown themes or fonts, out-of-range font sizes and invalid placements
// are rejected before any conversion (see IsConfigError). A segment that
// fails to convert renders as escaped text; a diagram that fails to render
// keeps its source and is flagged with the diagram-error class.
package staticmd
