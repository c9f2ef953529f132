package assets

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{
			name:        "loads base style",
			styleName:   DefaultStyleName,
			wantContain: ".markdown-body",
		},
		{
			name:      "returns ErrStyleNotFound for nonexistent",
			styleName: "nonexistent-style-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "returns ErrInvalidAssetName for path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) content should contain %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_BaseStyleUsesThemeVariables(t *testing.T) {
	t.Parallel()

	css, err := LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle() unexpected error: %v", err)
	}
	for _, want := range []string{"var(--doc-accent)", ".diagram-error", ".doc-outline", ".render-fallback"} {
		if !strings.Contains(css, want) {
			t.Errorf("base style missing %q", want)
		}
	}
	if strings.Contains(css, "#2563eb") {
		t.Errorf("base style hardcodes a theme accent color")
	}
}

func TestEmbeddedLoader_Templates(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	names, err := loader.TemplateNames()
	if err != nil {
		t.Fatalf("TemplateNames() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"letter", "minimal", "report"}, names); diff != "" {
		t.Errorf("TemplateNames() mismatch (-want +got):\n%s", diff)
	}

	// Every built-in template must decode under strict rules.
	for _, name := range names {
		tpl, err := loader.LoadTemplate(name)
		if err != nil {
			t.Errorf("LoadTemplate(%q) unexpected error: %v", name, err)
			continue
		}
		if tpl.ID != name || tpl.Name == "" || tpl.Body == "" {
			t.Errorf("LoadTemplate(%q) = %+v, want id, name and body", name, tpl)
		}
	}

	report, err := loader.LoadTemplate("report")
	if err != nil {
		t.Fatalf("LoadTemplate(report) unexpected error: %v", err)
	}
	if report.Header.Position != PositionSticky {
		t.Errorf("report header position = %q, want %q", report.Header.Position, PositionSticky)
	}
	if !strings.Contains(report.Body, "```mermaid") {
		t.Errorf("report body should show a diagram block")
	}
}

func TestEmbeddedLoader_LoadTemplate_Errors(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()
	if _, err := loader.LoadTemplate("nonexistent"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(nonexistent) error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := loader.LoadTemplate("../report"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadTemplate(../report) error = %v, want ErrInvalidAssetName", err)
	}
}
