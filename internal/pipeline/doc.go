// Package pipeline implements the document rendering stages shared by the
// live preview and the static export:
//   - Markdown preprocessing (line normalization, highlight syntax)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Diagram post-processing (fenced mermaid blocks to SVG)
//   - Outline extraction (heading ids and navigation entries)
//   - Stylesheet construction from a resolved theme
//   - Composition of header, body, footer and outline into one document
//
// Every stage takes a string and returns a new string. A render pass parses
// its own copy of the markup, so no stage ever touches markup owned by a
// different pass.
package pipeline
