package staticmd

import (
	"fmt"

	"github.com/alnah/go-staticmd/internal/theme"
)

// ThemeInfo describes a selectable theme.
type ThemeInfo struct {
	ID   ThemeID `json:"id"`
	Name string  `json:"name"`
	Dark bool    `json:"dark"`
}

// FontInfo describes a selectable font family.
type FontInfo struct {
	ID    string `json:"id"`
	Stack string `json:"stack"`
}

// Themes lists the known themes sorted by identifier.
func Themes() []ThemeInfo {
	ids := theme.IDs()
	out := make([]ThemeInfo, 0, len(ids))
	for _, id := range ids {
		p, err := theme.Resolve(id)
		if err != nil {
			continue
		}
		out = append(out, ThemeInfo{ID: ThemeID(p.ID), Name: p.Name, Dark: p.Dark})
	}
	return out
}

// Fonts lists the known font families sorted by identifier.
func Fonts() []FontInfo {
	ids := theme.FontIDs()
	out := make([]FontInfo, 0, len(ids))
	for _, id := range ids {
		f, err := theme.ResolveFont(id)
		if err != nil {
			continue
		}
		out = append(out, FontInfo{ID: f.ID, Stack: f.Stack})
	}
	return out
}

// ExportFilename returns the default file name of an exported page,
// static-page-<theme>.html. Unknown themes fall back to DefaultTheme.
func ExportFilename(id ThemeID) string {
	p, err := theme.Resolve(string(id))
	if err != nil {
		p, _ = theme.Resolve(string(DefaultTheme))
	}
	return fmt.Sprintf("static-page-%s.html", p.ID)
}
