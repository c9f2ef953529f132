package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MinNavigableEntries is the smallest outline worth a navigation block.
const MinNavigableEntries = 2

// BodyElementID is the id of the element holding the body segment in both
// output targets.
const BodyElementID = "document-body"

// headingIDPrefix prefixes the synthetic heading ids ("section-1", ...).
const headingIDPrefix = "section-"

// OutlineEntry is a navigable reference to one heading.
type OutlineEntry struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"` // 1-3
}

// headingOpenPattern detects h1-h3 without parsing.
var headingOpenPattern = regexp.MustCompile(`(?i)<h[1-3][\s>]`)

// Navigable reports whether an outline should be offered for navigation.
// Fewer than MinNavigableEntries entries has no navigational value.
func Navigable(entries []OutlineEntry) bool {
	return len(entries) >= MinNavigableEntries
}

// ExtractOutline assigns sequential ids to the h1-h3 elements of fragment,
// in document order, and returns the rewritten markup with the matching
// entries. The id written on a heading and the id in its entry are the same
// value, so navigating an entry always resolves.
func ExtractOutline(fragment string) (string, []OutlineEntry, error) {
	if !headingOpenPattern.MatchString(fragment) {
		return fragment, nil, nil
	}

	doc, err := parseFragment(fragment)
	if err != nil {
		return "", nil, fmt.Errorf("parsing body markup: %w", err)
	}

	entries := assignHeadingIDs(doc)
	if len(entries) == 0 {
		return fragment, nil, nil
	}

	out, err := renderFragment(doc)
	if err != nil {
		return "", nil, fmt.Errorf("rendering body markup: %w", err)
	}
	return out, entries, nil
}

// OutlineFromDocument extracts the outline of a complete document, limited
// to the element with id BodyElementID (header, footer and the navigation
// block itself are ignored). A document without that element is read whole.
func OutlineFromDocument(document string) ([]OutlineEntry, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	root := findByID(doc, BodyElementID)
	if root == nil {
		root = doc
	}
	return assignHeadingIDs(root), nil
}

// assignHeadingIDs walks root, writes "section-N" on each h1-h3 and
// returns the entries. Scripts, styles and templates are not descended.
// Any other element already carrying one of the assigned ids loses it, so
// each entry resolves to its heading.
func assignHeadingIDs(root *html.Node) []OutlineEntry {
	var entries []OutlineEntry
	headings := make(map[*html.Node]bool)
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return false
		}
		level := headingLevel(n.DataAtom)
		if level == 0 {
			return true
		}
		id := fmt.Sprintf("%s%d", headingIDPrefix, len(entries)+1)
		setAttr(n, "id", id)
		headings[n] = true
		entries = append(entries, OutlineEntry{
			ID:    id,
			Text:  normalizeSpace(textContent(n)),
			Level: level,
		})
		return false
	})
	if len(entries) > 0 {
		dropCollidingIDs(root, headings, len(entries))
	}
	return entries
}

// dropCollidingIDs removes the id of every element outside headings whose
// id is one of "section-1" to "section-count".
func dropCollidingIDs(root *html.Node, headings map[*html.Node]bool, count int) {
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return false
		}
		if headings[n] {
			return true
		}
		if isAssignedID(attr(n, "id"), count) {
			removeAttr(n, "id")
		}
		return true
	})
}

// isAssignedID reports whether id is "section-N" with 1 <= N <= count.
func isAssignedID(id string, count int) bool {
	rest, ok := strings.CutPrefix(id, headingIDPrefix)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n >= 1 && n <= count && strconv.Itoa(n) == rest
}

// headingLevel returns 1-3 for h1-h3, 0 otherwise.
func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	}
	return 0
}

// normalizeSpace collapses whitespace runs and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
