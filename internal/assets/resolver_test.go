package assets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("invalid custom path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_CustomOverridesEmbedded(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "styles/base.css", "/* override */")
	writeAsset(t, tmpDir, "templates/report.yaml", "name: Custom Report\nbody: custom\n")
	writeAsset(t, tmpDir, "templates/memo.yaml", "body: memo\n")

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	css, err := resolver.LoadStyle(DefaultStyleName)
	if err != nil || css != "/* override */" {
		t.Errorf("LoadStyle() = %q, %v; want custom override", css, err)
	}

	report, err := resolver.LoadTemplate("report")
	if err != nil {
		t.Fatalf("LoadTemplate(report) unexpected error: %v", err)
	}
	if report.Name != "Custom Report" {
		t.Errorf("LoadTemplate(report) name = %q, want custom override", report.Name)
	}

	// Not overridden: falls back to embedded.
	letter, err := resolver.LoadTemplate("letter")
	if err != nil {
		t.Fatalf("LoadTemplate(letter) unexpected error: %v", err)
	}
	if letter.Name != "Formal Letter" {
		t.Errorf("LoadTemplate(letter) name = %q, want embedded", letter.Name)
	}

	names, err := resolver.TemplateNames()
	if err != nil {
		t.Fatalf("TemplateNames() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"letter", "memo", "minimal", "report"}, names); diff != "" {
		t.Errorf("TemplateNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssetResolver_FallbackOnlyOnNotFound(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "templates/report.yaml", "colour: red\n")

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	if _, err := resolver.LoadTemplate("report"); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("LoadTemplate() error = %v, want ErrInvalidTemplate (no fallback)", err)
	}
	if _, err := resolver.LoadStyle("../secret"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName (no fallback)", err)
	}
}

func TestListTemplates(t *testing.T) {
	t.Parallel()

	tpls, err := ListTemplates(NewEmbeddedLoader())
	if err != nil {
		t.Fatalf("ListTemplates() unexpected error: %v", err)
	}
	var ids []string
	for _, tpl := range tpls {
		ids = append(ids, tpl.ID)
	}
	if diff := cmp.Diff([]string{"letter", "minimal", "report"}, ids); diff != "" {
		t.Errorf("ListTemplates() ids mismatch (-want +got):\n%s", diff)
	}
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrStyleNotFound", ErrStyleNotFound, true},
		{"ErrTemplateNotFound", ErrTemplateNotFound, true},
		{"ErrInvalidTemplate", ErrInvalidTemplate, false},
		{"ErrInvalidAssetName", ErrInvalidAssetName, false},
		{"generic error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isNotFoundError(tt.err); got != tt.want {
				t.Errorf("isNotFoundError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
