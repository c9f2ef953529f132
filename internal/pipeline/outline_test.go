package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestExtractOutline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		md   string
		want []OutlineEntry
	}{
		{
			name: "single heading",
			md:   "# Title\n\nHello",
			want: []OutlineEntry{{ID: "section-1", Text: "Title", Level: 1}},
		},
		{
			name: "three ranks in order, deeper ranks ignored",
			md:   "# One\n\n## Two\n\n### Three\n\n#### Four\n\n## Five",
			want: []OutlineEntry{
				{ID: "section-1", Text: "One", Level: 1},
				{ID: "section-2", Text: "Two", Level: 2},
				{ID: "section-3", Text: "Three", Level: 3},
				{ID: "section-4", Text: "Five", Level: 2},
			},
		},
		{
			name: "inline markup flattened to text",
			md:   "## The `code` and **bold**",
			want: []OutlineEntry{{ID: "section-1", Text: "The code and bold", Level: 2}},
		},
		{
			name: "raw HTML heading with author id is renumbered",
			md:   "<h2 id=\"custom\">Raw</h2>\n\n# Next",
			want: []OutlineEntry{
				{ID: "section-1", Text: "Raw", Level: 2},
				{ID: "section-2", Text: "Next", Level: 1},
			},
		},
		{
			name: "no headings",
			md:   "just text\n\n#### too deep",
			want: nil,
		},
		{
			name: "empty body",
			md:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, got, err := ExtractOutline(mustHTML(t, tt.md))
			if err != nil {
				t.Fatalf("ExtractOutline() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractOutline() mismatch (-want +got):\n%s", diff)
			}
			for _, e := range got {
				if !strings.Contains(out, fmt.Sprintf(`id="%s"`, e.ID)) {
					t.Errorf("markup has no element with id %q\n%s", e.ID, out)
				}
			}
		})
	}
}

func TestExtractOutline_IDsResolveToTheirHeading(t *testing.T) {
	t.Parallel()

	md := "# A\n\ntext\n\n## B\n\n```mermaid\nA-->B\n```\n\n### C\n\n## D"
	out, entries, err := ExtractOutline(mustHTML(t, md))
	if err != nil {
		t.Fatalf("ExtractOutline() unexpected error: %v", err)
	}

	doc, err := parseFragment(out)
	if err != nil {
		t.Fatalf("parseFragment() unexpected error: %v", err)
	}

	var headings []*html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && headingLevel(n.DataAtom) > 0 {
			headings = append(headings, n)
		}
		return true
	})

	if len(entries) != len(headings) {
		t.Fatalf("got %d entries for %d headings", len(entries), len(headings))
	}
	seen := make(map[string]bool)
	for i, e := range entries {
		if seen[e.ID] {
			t.Errorf("duplicate id %q", e.ID)
		}
		seen[e.ID] = true

		target := findByID(doc, e.ID)
		if target != headings[i] {
			t.Errorf("entry %d id %q does not resolve to heading %d", i, e.ID, i)
		}
		if got := normalizeSpace(textContent(target)); got != e.Text {
			t.Errorf("entry %d text = %q, heading text = %q", i, e.Text, got)
		}
	}
}

func TestExtractOutline_AuthorIDCollision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		kept     string // author id expected to survive, if any
	}{
		{
			name:     "raw block before headings",
			fragment: `<div id="section-2">raw</div><h1>One</h1><h2>Two</h2>`,
		},
		{
			name:     "inside a heading",
			fragment: `<h1>One <span id="section-1">x</span></h1><h2>Two</h2>`,
		},
		{
			name:     "beyond the assigned range kept",
			fragment: `<p id="section-9">note</p><h1>One</h1><h2>Two</h2>`,
			kept:     "section-9",
		},
		{
			name:     "padded number kept",
			fragment: `<p id="section-02">note</p><h1>One</h1><h2>Two</h2>`,
			kept:     "section-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, entries, err := ExtractOutline(tt.fragment)
			if err != nil {
				t.Fatalf("ExtractOutline() unexpected error: %v", err)
			}
			doc, err := parseFragment(out)
			if err != nil {
				t.Fatalf("parseFragment() unexpected error: %v", err)
			}

			ids := make(map[string]int)
			walk(doc, func(n *html.Node) bool {
				if n.Type == html.ElementNode {
					if id := attr(n, "id"); id != "" {
						ids[id]++
					}
				}
				return true
			})

			for _, e := range entries {
				if ids[e.ID] != 1 {
					t.Errorf("id %q carried by %d elements, want 1", e.ID, ids[e.ID])
				}
				target := findByID(doc, e.ID)
				if target == nil || headingLevel(target.DataAtom) != e.Level {
					t.Errorf("entry %q does not resolve to its h%d", e.ID, e.Level)
				}
			}
			if tt.kept != "" && ids[tt.kept] != 1 {
				t.Errorf("author id %q dropped, want it kept", tt.kept)
			}
		})
	}
}

func TestExtractOutline_NoHeadingsIsNoop(t *testing.T) {
	t.Parallel()

	fragment := mustHTML(t, "para\n\n- list")
	out, entries, err := ExtractOutline(fragment)
	if err != nil {
		t.Fatalf("ExtractOutline() unexpected error: %v", err)
	}
	if out != fragment || entries != nil {
		t.Errorf("ExtractOutline() changed markup without headings: %q", out)
	}
}

func TestOutlineFromDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want []OutlineEntry
	}{
		{
			name: "limited to the body element",
			doc: `<!DOCTYPE html><html><body>
<header><h1>Header title</h1></header>
<article id="document-body"><h1>Body</h1><h2>Sub</h2></article>
<footer><h2>Footer</h2></footer>
<script>var s = "<h1>not a heading</h1>";</script>
</body></html>`,
			want: []OutlineEntry{
				{ID: "section-1", Text: "Body", Level: 1},
				{ID: "section-2", Text: "Sub", Level: 2},
			},
		},
		{
			name: "whole document without body element",
			doc:  `<html><body><h3>Only</h3></body></html>`,
			want: []OutlineEntry{{ID: "section-1", Text: "Only", Level: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := OutlineFromDocument(tt.doc)
			if err != nil {
				t.Fatalf("OutlineFromDocument() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OutlineFromDocument() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNavigable(t *testing.T) {
	t.Parallel()

	one := []OutlineEntry{{ID: "section-1", Text: "A", Level: 1}}
	two := append(one, OutlineEntry{ID: "section-2", Text: "B", Level: 2})

	if Navigable(nil) || Navigable(one) {
		t.Error("Navigable() = true for fewer than two entries")
	}
	if !Navigable(two) {
		t.Error("Navigable() = false for two entries")
	}
}

func TestHeadingLevel(t *testing.T) {
	t.Parallel()

	tests := map[atom.Atom]int{atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 0, atom.P: 0}
	for a, want := range tests {
		if got := headingLevel(a); got != want {
			t.Errorf("headingLevel(%s) = %d, want %d", a, got, want)
		}
	}
}
