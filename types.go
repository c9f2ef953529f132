package staticmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-staticmd/internal/pipeline"
	"github.com/alnah/go-staticmd/internal/theme"
)

// ThemeID names a presentation theme.
type ThemeID string

// Theme identifiers.
const (
	ThemeModern   ThemeID = theme.Modern
	ThemeSepia    ThemeID = theme.Sepia
	ThemeCyber    ThemeID = theme.Cyber
	ThemeNotebook ThemeID = theme.Notebook

	DefaultTheme = ThemeModern
)

// Font family identifiers. The CSS stack of a family ("Lora, serif") is
// accepted wherever an identifier is.
const (
	FontSans  = theme.FontSans
	FontSerif = theme.FontSerif
	FontMono  = theme.FontMono

	DefaultFont = theme.DefaultFont
)

// Font size bounds in pixels.
const (
	MinFontSize     = theme.MinFontSize
	MaxFontSize     = theme.MaxFontSize
	DefaultFontSize = theme.DefaultFontSize
)

// Position is the placement of a header or footer.
type Position string

// Placement modes. The zero value behaves as PositionFlow.
const (
	PositionFlow   Position = "flow"
	PositionSticky Position = "sticky"
)

// Sticky reports whether p pins its segment.
func (p Position) Sticky() bool {
	return strings.EqualFold(string(p), string(PositionSticky))
}

// Validate checks that p is empty, flow or sticky.
func (p Position) Validate() error {
	switch strings.ToLower(string(p)) {
	case "", string(PositionFlow), string(PositionSticky):
		return nil
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidPosition, string(p), PositionFlow, PositionSticky)
	}
}

// ParsePosition converts a configuration string to a Position.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p == "" {
		return PositionFlow, nil
	}
	return p, nil
}

// Input is one snapshot of an authored document.
type Input struct {
	Body   string `json:"body"`
	Header string `json:"header"`
	Footer string `json:"footer"`

	Theme      ThemeID `json:"theme"`
	FontFamily string  `json:"fontFamily"`
	FontSize   int     `json:"fontSize"` // 0 means DefaultFontSize

	HeaderPosition Position `json:"headerPos"`
	FooterPosition Position `json:"footerPos"`

	// Template names a document template whose header, footer and body
	// fill in any of those left empty.
	Template string `json:"template,omitempty"`
}

// Validate checks presentation choices. It does not mutate the input.
func (in Input) Validate() error {
	if _, err := theme.Resolve(string(in.Theme)); err != nil {
		return err
	}
	if _, err := theme.ResolveFont(in.FontFamily); err != nil {
		return err
	}
	if in.FontSize != 0 && (in.FontSize < MinFontSize || in.FontSize > MaxFontSize) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidFontSize, in.FontSize, MinFontSize, MaxFontSize)
	}
	if err := in.HeaderPosition.Validate(); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if err := in.FooterPosition.Validate(); err != nil {
		return fmt.Errorf("footer: %w", err)
	}
	return nil
}

// Template is a named preset supplying default header, footer and body text.
type Template struct {
	ID          string
	Name        string
	Description string

	Header         string
	HeaderPosition Position
	Footer         string
	FooterPosition Position
	Body           string
}

// OutlineEntry is a navigable reference to one heading.
type OutlineEntry = pipeline.OutlineEntry

// DiagramRenderer renders one diagram definition to SVG markup.
type DiagramRenderer = pipeline.DiagramRenderer

// DiagramRequest is one diagram render call.
type DiagramRequest = pipeline.DiagramRequest

// DiagramConfig carries the palette and label typeface for diagrams.
type DiagramConfig = pipeline.DiagramConfig

// Result is the output of one export pass.
type Result struct {
	HTML    string
	Title   string
	Outline []OutlineEntry

	// Fallbacks lists the segments ("header", "body", "footer") whose
	// conversion failed and were rendered as escaped text.
	Fallbacks []string

	// Diagrams counts diagram blocks. In an export they render when the
	// document loads, so FailedDiagrams is always zero there.
	Diagrams       int
	FailedDiagrams int
}

// Frame is one applied preview pass.
type Frame struct {
	Generation uint64         `json:"generation"`
	HTML       string         `json:"html"`
	Outline    []OutlineEntry `json:"outline"`

	Diagrams       int      `json:"diagrams"`
	FailedDiagrams int      `json:"failedDiagrams"`
	Fallbacks      []string `json:"fallbacks,omitempty"`

	// Error is set when the pass could not produce a document.
	Error string `json:"error,omitempty"`

	Duration time.Duration `json:"-"`
}
