package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable

import (
	"strings"
	"testing"
)

// withContainer overrides IsInContainer for the duration of the test.
func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name      string
		container bool
		env       map[string]string
		want      []string
		wantNot   []string
	}{
		{
			name: "CI suggests sandbox and binary",
			env:  map[string]string{"CI": "true", "ROD_NO_SANDBOX": "", "ROD_BROWSER_BIN": ""},
			want: []string{"hint:", "--no-sandbox", "ROD_BROWSER_BIN", "--no-diagrams"},
		},
		{
			name:      "docker suggests sandbox",
			container: true,
			env:       map[string]string{"CI": "", "ROD_NO_SANDBOX": "", "ROD_BROWSER_BIN": ""},
			want:      []string{"ROD_NO_SANDBOX=1"},
		},
		{
			name:      "sandbox already disabled",
			container: true,
			env:       map[string]string{"CI": "", "ROD_NO_SANDBOX": "1", "ROD_BROWSER_BIN": ""},
			wantNot:   []string{"--no-sandbox"},
		},
		{
			name:    "browser already configured",
			env:     map[string]string{"CI": "", "GITHUB_ACTIONS": "", "GITLAB_CI": "", "JENKINS_URL": "", "ROD_NO_SANDBOX": "", "ROD_BROWSER_BIN": "/usr/bin/chromium"},
			want:    []string{"--no-diagrams"},
			wantNot: []string{"ROD_BROWSER_BIN", "--no-sandbox"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withContainer(t, tt.container)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			hint := ForBrowserConnect()
			for _, want := range tt.want {
				if !strings.Contains(hint, want) {
					t.Errorf("ForBrowserConnect() = %q, want containing %q", hint, want)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(hint, not) {
					t.Errorf("ForBrowserConnect() = %q, should not contain %q", hint, not)
				}
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{"empty paths", nil, "--config"},
		{"suggests user config", []string{"./work.yaml", "/home/u/.config/staticmd/work.yaml"}, "create /home/u/.config/staticmd/work.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if !strings.HasPrefix(hint, "\n  hint: ") {
				t.Errorf("expected hint prefix, got %q", hint)
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForChoices(t *testing.T) {
	t.Parallel()

	if got := ForChoices(nil); got != "" {
		t.Errorf("ForChoices(nil) = %q, want empty", got)
	}
	if got := ForChoices([]string{"cyber", "modern"}); got != "\n  hint: available: cyber, modern" {
		t.Errorf("ForChoices() = %q", got)
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		hint     string
		contains string
	}{
		"diagram timeout":  {ForDiagramTimeout(), "--diagram-timeout"},
		"output directory": {ForOutputDirectory(), "parent directory"},
		"address in use":   {ForAddressInUse(), "--addr"},
	}

	for name, tt := range tests {
		if !strings.HasPrefix(tt.hint, "\n  hint: ") {
			t.Errorf("%s: missing hint prefix: %q", name, tt.hint)
		}
		if !strings.Contains(tt.hint, tt.contains) {
			t.Errorf("%s: %q should contain %q", name, tt.hint, tt.contains)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}
