package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Font identifiers.
const (
	FontSans  = "sans"
	FontSerif = "serif"
	FontMono  = "mono"
)

// DefaultFont is the font used when none is selected.
const DefaultFont = FontSans

// Font size bounds in pixels.
const (
	MinFontSize     = 12
	MaxFontSize     = 28
	DefaultFontSize = 16
)

// Font describes a selectable font family.
type Font struct {
	ID     string
	Name   string // primary family name, used as the diagram label typeface
	Stack  string // CSS font-family value
	Google string // Google Fonts css2 family parameter
}

var fonts = map[string]Font{
	FontSans:  {ID: FontSans, Name: "Inter", Stack: "Inter, sans-serif", Google: "Inter:wght@400;700"},
	FontSerif: {ID: FontSerif, Name: "Lora", Stack: "Lora, serif", Google: "Lora:ital,wght@0,400;0,700;1,400"},
	FontMono:  {ID: FontMono, Name: "JetBrains Mono", Stack: "JetBrains Mono, monospace", Google: "JetBrains+Mono"},
}

// ResolveFont maps a font identifier to its family. Both the short
// identifier ("serif") and the CSS stack ("Lora, serif") are accepted.
// An empty identifier resolves to DefaultFont.
func ResolveFont(id string) (Font, error) {
	key := strings.TrimSpace(id)
	if key == "" {
		key = DefaultFont
	}
	if f, ok := fonts[strings.ToLower(key)]; ok {
		return f, nil
	}
	for _, f := range fonts {
		if strings.EqualFold(f.Stack, key) {
			return f, nil
		}
	}
	return Font{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFont, id, strings.Join(FontIDs(), ", "))
}

// FontIDs returns the known font identifiers in sorted order.
func FontIDs() []string {
	ids := make([]string, 0, len(fonts))
	for id := range fonts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GoogleFontsURL returns the stylesheet URL loading every known family.
func GoogleFontsURL() string {
	families := make([]string, 0, len(fonts))
	for _, id := range FontIDs() {
		families = append(families, "family="+fonts[id].Google)
	}
	return "https://fonts.googleapis.com/css2?" + strings.Join(families, "&") + "&display=swap"
}
