package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-staticmd/internal/config"
	"github.com/alnah/go-staticmd/internal/fileutil"
)

// stdoutOutput selects stdout as the export destination.
const stdoutOutput = "-"

// runExport renders one markdown file to a self-contained HTML page.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	bodyPath, err := requireInput(positional)
	if err != nil {
		return err
	}

	cfg, err := resolveDocumentConfig(flags.common, &flags.document, &flags.header, &flags.footer, env)
	if err != nil {
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
	res, err := compiler.Compile(ctx, in)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", bodyPath, err)
	}

	if len(res.Fallbacks) > 0 {
		log.Warn("segments rendered as plain text", "segments", strings.Join(res.Fallbacks, ", "))
	}

	if flags.output == stdoutOutput {
		if _, err := fmt.Fprint(env.Stdout, res.HTML); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}

	outPath := resolveOutputPath(flags.output, bodyPath, in.Theme)
	if err := fileutil.WriteFileAtomic(outPath, []byte(res.HTML), filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, outPath, err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Exported %s -> %s (%d headings, %d diagrams)\n",
			bodyPath, outPath, len(res.Outline), res.Diagrams)
	}
	return nil
}

// resolveDocumentConfig loads the config and applies environment and
// document flags over it, then validates the result.
func resolveDocumentConfig(common commonFlags, doc *documentFlags, header, footer *segmentFlags, env *Environment) (*config.Config, error) {
	cfg, err := loadConfig(common.config, env)
	if err != nil {
		return nil, err
	}
	mergeDocumentFlags(doc, cfg)
	if header != nil {
		mergeSegmentFlags(header, &cfg.Header)
	}
	if footer != nil {
		mergeSegmentFlags(footer, &cfg.Footer)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
