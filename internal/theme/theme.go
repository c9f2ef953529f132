// Package theme resolves presentation choices (theme, font family) to the
// literal values shared by the live preview and the exported document.
//
// Everything here is a pure lookup: no state, no I/O. An identifier that does
// not resolve is a configuration error and is reported as such, never
// replaced by a default.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for resolution failures.
var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrUnknownFont  = errors.New("unknown font family")
)

// Theme identifiers.
const (
	Modern   = "modern"
	Sepia    = "sepia"
	Cyber    = "cyber"
	Notebook = "notebook"
)

// Default is the theme used when none is selected.
const Default = Modern

// Diagram palettes understood by the diagram renderer.
const (
	DiagramPaletteDefault = "default"
	DiagramPaletteDark    = "dark"
	DiagramPaletteNeutral = "neutral"
)

// Presentation is the fixed set of values a theme resolves to.
// Colors are literal CSS values so the exported document carries no
// dependency on a styling framework.
type Presentation struct {
	ID   string
	Name string

	Background string
	Text       string
	Accent     string
	Muted      string
	Border     string

	CodeBackground string
	CodeText       string

	// ContainerMaxWidth and ContainerPadding size the document column.
	ContainerMaxWidth string
	ContainerPadding  string
	LineHeight        string

	// Dark selects inverted prose colors and the dark diagram palette.
	Dark bool

	DiagramPalette string
	CodeStyle      string // chroma style name

	// Ruled is set by the notebook variant: ruled-line background and
	// block spacing snapped to the rule height.
	Ruled      bool
	RuleColor  string
	MarginRule string
	RuleHeight string
}

var modern = Presentation{
	ID:                Modern,
	Name:              "Modern Clean",
	Background:        "#ffffff",
	Text:              "#111827",
	Accent:            "#2563eb",
	Muted:             "#64748b",
	Border:            "#cbd5e1",
	CodeBackground:    "#e2e8f0",
	CodeText:          "#0f172a",
	ContainerMaxWidth: "768px",
	ContainerPadding:  "3rem",
	LineHeight:        "1.6",
	DiagramPalette:    DiagramPaletteDefault,
	CodeStyle:         "github",
}

var presentations = map[string]Presentation{
	Modern: modern,
	Sepia: {
		ID:                Sepia,
		Name:              "Reader Sepia",
		Background:        "#f4ecd8",
		Text:              "#433422",
		Accent:            "#8b5e3c",
		Muted:             "#7a6650",
		Border:            "#d6c7a1",
		CodeBackground:    "#e8dfc5",
		CodeText:          "#433422",
		ContainerMaxWidth: "768px",
		ContainerPadding:  "3rem",
		LineHeight:        "1.7",
		DiagramPalette:    DiagramPaletteNeutral,
		CodeStyle:         "solarized-light",
	},
	Cyber: {
		ID:                Cyber,
		Name:              "Cyber Dark",
		Background:        "#020617",
		Text:              "#e2e8f0",
		Accent:            "#22d3ee",
		Muted:             "#94a3b8",
		Border:            "#1e293b",
		CodeBackground:    "#1e293b",
		CodeText:          "#22d3ee",
		ContainerMaxWidth: "768px",
		ContainerPadding:  "3rem",
		LineHeight:        "1.6",
		Dark:              true,
		DiagramPalette:    DiagramPaletteDark,
		CodeStyle:         "monokai",
	},
	Notebook: notebookOf(modern),
}

// notebookOf derives the ruled variant from a base identity. Colors and
// typography stay those of the base.
func notebookOf(base Presentation) Presentation {
	p := base
	p.ID = Notebook
	p.Name = "Notebook"
	p.LineHeight = "2rem"
	p.Ruled = true
	p.RuleColor = "#c7d2fe"
	p.MarginRule = "#fca5a5"
	p.RuleHeight = "2rem"
	return p
}

// Resolve maps a theme identifier to its presentation values.
// Matching is case-insensitive; an empty identifier resolves to Default.
func Resolve(id string) (Presentation, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		key = Default
	}
	p, ok := presentations[key]
	if !ok {
		return Presentation{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, id, strings.Join(IDs(), ", "))
	}
	return p, nil
}

// IDs returns the known theme identifiers in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(presentations))
	for id := range presentations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
