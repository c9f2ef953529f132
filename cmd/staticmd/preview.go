package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"time"

	staticmd "github.com/alnah/go-staticmd"
	"github.com/alnah/go-staticmd/internal/config"
	"github.com/alnah/go-staticmd/internal/server"
)

// watchInterval is how often source files are checked for changes.
var watchInterval = 250 * time.Millisecond

// runPreview serves a live preview of a markdown file until ctx is done.
func runPreview(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	bodyPath, err := requireInput(positional)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeDocumentFlags(&flags.document, cfg)
	mergeSegmentFlags(&flags.header, &cfg.Header)
	mergeSegmentFlags(&flags.footer, &cfg.Footer)
	mergeDiagramFlags(&flags.diagram, cfg)
	mergePreviewFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(env.Stderr, flags.common)

	in, err := buildInput(cfg, bodyPath)
	if err != nil {
		return err
	}
	compiler, err := newCompiler(cfg, log)
	if err != nil {
		return err
	}

	opts := []staticmd.PreviewOption{
		staticmd.WithDebounce(cfg.DebounceDuration()),
		staticmd.WithAssetBaseURL(server.FilesPrefix),
	}
	if cfg.Diagram.Enabled {
		renderer := newRenderer(cfg, log)
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Warn("closing diagram renderer", "error", err)
			}
		}()
		opts = append(opts, staticmd.WithDiagramRenderer(renderer))
	}

	preview, err := staticmd.NewPreview(compiler, in, opts...)
	if err != nil {
		return err
	}
	defer preview.Close()

	ln, err := server.Listen(cfg.Preview.Addr)
	if err != nil {
		return err
	}
	srv := server.New(preview, log, server.Config{
		FilesDir: filepath.Dir(bodyPath),
		Title:    filepath.Base(bodyPath) + " - StaticMD",
	})

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Previewing %s at http://%s\n", bodyPath, ln.Addr())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watchFiles(ctx, sourcePaths(cfg, bodyPath), watchInterval, func() {
		reload(preview, cfg, bodyPath, log)
	})

	return srv.Serve(ctx, ln)
}

// mergePreviewFlags applies the preview section flags.
func mergePreviewFlags(f *previewFlags, cfg *config.Config) {
	if f.addr != "" {
		cfg.Preview.Addr = f.addr
	}
	if f.debounce != "" {
		cfg.Preview.Debounce = f.debounce
	}
}

// reload rebuilds the input from disk and hands it to the preview.
// Failures keep the last good frame.
func reload(p *staticmd.Preview, cfg *config.Config, bodyPath string, log *slog.Logger) {
	in, err := buildInput(cfg, bodyPath)
	if err != nil {
		log.Warn("reloading document", "error", err)
		return
	}
	if err := p.Update(in); err != nil {
		log.Warn("document update rejected", "error", err)
		return
	}
	log.Debug("document changed", "path", bodyPath, "generation", p.Generation())
}

// fileStamp identifies one version of a file. Missing files have the zero stamp.
type fileStamp struct {
	mod  time.Time
	size int64
}

func stamp(paths []string) map[string]fileStamp {
	out := make(map[string]fileStamp, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			out[p] = fileStamp{}
			continue
		}
		out[p] = fileStamp{mod: info.ModTime(), size: info.Size()}
	}
	return out
}

// watchFiles polls paths and calls onChange once per observed change
// until ctx is done.
func watchFiles(ctx context.Context, paths []string, interval time.Duration, onChange func()) {
	last := stamp(paths)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := stamp(paths)
			if !maps.Equal(cur, last) {
				last = cur
				onChange()
			}
		}
	}
}
