// Package assets provides the base stylesheet and the document templates
// (preset header, footer and body text) used when composing a document.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in assets compiled in with go:embed
//	    ├── FilesystemLoader  - assets from a directory on disk
//	    └── AssetResolver     - custom first, embedded on not-found
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css       # base stylesheet override (e.g., base.css)
//	└── templates/
//	    └── {name}.yaml      # document template
//
// A template file is strict YAML:
//
//	id: report
//	name: Project Report
//	description: Optional one-line summary.
//	header:
//	  text: "**Internal report**"
//	  position: sticky         # flow (default) or sticky
//	footer:
//	  text: "Page footer"
//	body: |
//	  # Title
//
// # Security
//
// Asset names are validated before any lookup. FilesystemLoader resolves
// symlinks and verifies paths stay within basePath.
package assets
