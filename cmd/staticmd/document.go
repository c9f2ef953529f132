package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	staticmd "github.com/alnah/go-staticmd"
	"github.com/alnah/go-staticmd/internal/config"
	"github.com/alnah/go-staticmd/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoInput     = errors.New("no input file specified")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

// File limits and permissions.
const (
	maxDocumentBytes = 10 << 20
	filePermissions  = 0o644 // rw-r--r--: owner read+write, others read
)

// requireInput returns the single markdown path among the positional args.
func requireInput(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input file, got %d", ErrUsage, len(args))
	}
}

// readText reads a markdown source, wrapping failures in ErrReadInput.
func readText(path string) (string, error) {
	text, err := fileutil.ReadTextFile(path, maxDocumentBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return text, nil
}

// segmentText returns a header or footer, inline or read from its file.
func segmentText(seg config.SegmentConfig) (string, error) {
	if seg.File == "" {
		return seg.Text, nil
	}
	return readText(seg.File)
}

// buildInput assembles the document snapshot from bodyPath and cfg.
func buildInput(cfg *config.Config, bodyPath string) (staticmd.Input, error) {
	body, err := readText(bodyPath)
	if err != nil {
		return staticmd.Input{}, err
	}
	header, err := segmentText(cfg.Header)
	if err != nil {
		return staticmd.Input{}, fmt.Errorf("header: %w", err)
	}
	footer, err := segmentText(cfg.Footer)
	if err != nil {
		return staticmd.Input{}, fmt.Errorf("footer: %w", err)
	}
	headerPos, err := staticmd.ParsePosition(cfg.Header.Position)
	if err != nil {
		return staticmd.Input{}, fmt.Errorf("header: %w", err)
	}
	footerPos, err := staticmd.ParsePosition(cfg.Footer.Position)
	if err != nil {
		return staticmd.Input{}, fmt.Errorf("footer: %w", err)
	}

	return staticmd.Input{
		Body:           body,
		Header:         header,
		Footer:         footer,
		Theme:          staticmd.ThemeID(cfg.Document.Theme),
		FontFamily:     cfg.Document.Font,
		FontSize:       cfg.Document.FontSize,
		HeaderPosition: headerPos,
		FooterPosition: footerPos,
		Template:       cfg.Document.Template,
	}, nil
}

// sourcePaths lists the files a document is built from.
func sourcePaths(cfg *config.Config, bodyPath string) []string {
	paths := []string{bodyPath}
	for _, f := range []string{cfg.Header.File, cfg.Footer.File} {
		if f != "" {
			paths = append(paths, f)
		}
	}
	return paths
}

// newCompiler builds a compiler from the document and asset settings.
func newCompiler(cfg *config.Config, log *slog.Logger) (*staticmd.Compiler, error) {
	opts := []staticmd.Option{staticmd.WithLogger(log)}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, staticmd.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Document.Math {
		opts = append(opts, staticmd.WithMath())
	}
	if cfg.Document.Lang != "" {
		opts = append(opts, staticmd.WithLang(cfg.Document.Lang))
	}
	if cfg.Diagram.Workers > 0 {
		opts = append(opts, staticmd.WithDiagramConcurrency(cfg.Diagram.Workers))
	}
	return staticmd.NewCompiler(opts...)
}

// newRenderer builds the headless-browser diagram renderer.
func newRenderer(cfg *config.Config, log *slog.Logger) *staticmd.RodDiagramRenderer {
	opts := []staticmd.RendererOption{
		staticmd.WithRenderTimeout(cfg.DiagramTimeout()),
		staticmd.WithPages(cfg.Diagram.Workers),
		staticmd.WithRendererLogger(log),
	}
	if cfg.Diagram.BrowserBin != "" {
		opts = append(opts, staticmd.WithBrowserBin(cfg.Diagram.BrowserBin))
	}
	if cfg.Diagram.NoSandbox {
		opts = append(opts, staticmd.WithNoSandbox(true))
	}
	return staticmd.NewRodDiagramRenderer(opts...)
}

// resolveOutputPath picks where an export of bodyPath is written.
// Empty output writes next to the input; a directory gets the default name.
func resolveOutputPath(output, bodyPath string, theme staticmd.ThemeID) string {
	name := staticmd.ExportFilename(theme)
	switch {
	case output == "":
		return filepath.Join(filepath.Dir(bodyPath), name)
	case fileutil.DirExists(output):
		return filepath.Join(output, name)
	default:
		return output
	}
}

// newLogger builds the CLI logger on w.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if f.logJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
