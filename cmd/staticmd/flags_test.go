package main

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-staticmd/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseFlags - Parsing
// ---------------------------------------------------------------------------

func TestParseExportFlags(t *testing.T) {
	t.Parallel()

	args := []string{"-t", "cyber", "--font-size", "18", "--header", "Top", "--footer-pos", "sticky", "-o", "out.html", "-q", "doc.md"}
	f, rest, err := parseExportFlags(args, io.Discard)
	if err != nil {
		t.Fatalf("parseExportFlags() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"doc.md"}, rest); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if f.document.theme != "cyber" || f.document.fontSize != 18 {
		t.Errorf("document flags = %+v", f.document)
	}
	if f.header.text != "Top" || f.footer.position != "sticky" {
		t.Errorf("segment flags = %+v / %+v", f.header, f.footer)
	}
	if f.output != "out.html" || !f.common.quiet {
		t.Errorf("output = %q quiet = %v", f.output, f.common.quiet)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantErr: ErrUsage},
		{name: "bad int", args: []string{"--font-size", "big"}, wantErr: ErrUsage},
		{name: "help", args: []string{"--help"}, wantErr: flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := parseExportFlags(tt.args, io.Discard)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseExportFlags(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParsePreviewFlags(t *testing.T) {
	t.Parallel()

	args := []string{"-a", "127.0.0.1:0", "--debounce", "50ms", "--no-diagrams", "--no-sandbox", "-w", "3", "doc.md"}
	f, rest, err := parsePreviewFlags(args, io.Discard)
	if err != nil {
		t.Fatalf("parsePreviewFlags() unexpected error: %v", err)
	}
	if len(rest) != 1 || f.addr != "127.0.0.1:0" || f.debounce != "50ms" {
		t.Errorf("preview flags = %+v rest = %v", f, rest)
	}
	want := diagramFlags{disabled: true, noSandbox: true, workers: 3}
	if diff := cmp.Diff(want, f.diagram, cmp.AllowUnexported(diagramFlags{})); diff != "" {
		t.Errorf("diagram flags mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI Over Config
// ---------------------------------------------------------------------------

func TestMergeSegmentFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags segmentFlags
		seg   config.SegmentConfig
		want  config.SegmentConfig
	}{
		{
			name: "no flags keeps config",
			seg:  config.SegmentConfig{Text: "cfg", Position: "sticky"},
			want: config.SegmentConfig{Text: "cfg", Position: "sticky"},
		},
		{
			name:  "text replaces file",
			flags: segmentFlags{text: "flag"},
			seg:   config.SegmentConfig{File: "footer.md"},
			want:  config.SegmentConfig{Text: "flag"},
		},
		{
			name:  "file replaces text",
			flags: segmentFlags{file: "h.md", position: "flow"},
			seg:   config.SegmentConfig{Text: "cfg", Position: "sticky"},
			want:  config.SegmentConfig{File: "h.md", Position: "flow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seg := tt.seg
			mergeSegmentFlags(&tt.flags, &seg)
			if diff := cmp.Diff(tt.want, seg); diff != "" {
				t.Errorf("mergeSegmentFlags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeDocumentAndDiagramFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Document.Lang = "de"
	mergeDocumentFlags(&documentFlags{theme: "sepia", math: true, assetPath: "/assets"}, cfg)
	mergeDiagramFlags(&diagramFlags{disabled: true, timeout: "5s"}, cfg)
	mergePreviewFlags(&previewFlags{addr: ":9000"}, cfg)

	if cfg.Document.Theme != "sepia" || !cfg.Document.Math || cfg.Document.Lang != "de" {
		t.Errorf("document = %+v", cfg.Document)
	}
	if cfg.Assets.BasePath != "/assets" {
		t.Errorf("assets.basePath = %q", cfg.Assets.BasePath)
	}
	if cfg.Diagram.Enabled || cfg.Diagram.Timeout != "5s" {
		t.Errorf("diagram = %+v", cfg.Diagram)
	}
	if cfg.Preview.Addr != ":9000" {
		t.Errorf("preview.addr = %q", cfg.Preview.Addr)
	}
}
