package assets

import (
	"fmt"
	"strings"

	"github.com/alnah/go-staticmd/internal/yamlutil"
)

// DefaultStyleName is the name of the built-in base stylesheet.
const DefaultStyleName = "base"

// Segment positions accepted in template files.
const (
	PositionFlow   = "flow"
	PositionSticky = "sticky"
)

// SegmentTemplate is preset header or footer text.
type SegmentTemplate struct {
	Text     string `yaml:"text"`
	Position string `yaml:"position"`
}

// DocumentTemplate supplies default header, footer and body text.
// Explicit input always wins over template values.
type DocumentTemplate struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Header      SegmentTemplate `yaml:"header"`
	Footer      SegmentTemplate `yaml:"footer"`
	Body        string          `yaml:"body"`
}

// parseTemplate decodes a template file. The file name is authoritative:
// an empty id takes the name, a differing id is rejected.
func parseTemplate(name string, data []byte) (*DocumentTemplate, error) {
	var tpl DocumentTemplate
	if err := yamlutil.UnmarshalStrict(data, &tpl); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTemplate, name, err)
	}

	if tpl.ID == "" {
		tpl.ID = name
	}
	if tpl.ID != name {
		return nil, fmt.Errorf("%w: %q declares id %q", ErrInvalidTemplate, name, tpl.ID)
	}
	if tpl.Name == "" {
		tpl.Name = name
	}

	for label, seg := range map[string]*SegmentTemplate{"header": &tpl.Header, "footer": &tpl.Footer} {
		pos, err := normalizePosition(seg.Position)
		if err != nil {
			return nil, fmt.Errorf("%w: %q %s: %v", ErrInvalidTemplate, name, label, err)
		}
		seg.Position = pos
	}

	return &tpl, nil
}

// normalizePosition lowercases a position, mapping empty to flow.
func normalizePosition(pos string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(pos)); p {
	case "", PositionFlow:
		return PositionFlow, nil
	case PositionSticky:
		return PositionSticky, nil
	default:
		return "", fmt.Errorf("position must be %s or %s, got %q", PositionFlow, PositionSticky, pos)
	}
}
