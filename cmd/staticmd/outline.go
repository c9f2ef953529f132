package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	staticmd "github.com/alnah/go-staticmd"
)

// minOutlineWidth keeps deep entries readable on narrow terminals.
const minOutlineWidth = 20

// runOutline prints the heading outline of a markdown file.
func runOutline(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseOutlineFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	bodyPath, err := requireInput(positional)
	if err != nil {
		return err
	}
	if flags.width < 0 {
		return fmt.Errorf("%w: --width must not be negative", ErrUsage)
	}

	cfg, err := resolveDocumentConfig(flags.common, &flags.document, nil, nil, env)
	if err != nil {
		return err
	}
	in, err := buildInput(cfg, bodyPath)
	if err != nil {
		return err
	}
	compiler, err := newCompiler(cfg, newLogger(env.Stderr, flags.common))
	if err != nil {
		return err
	}
	res, err := compiler.Compile(ctx, in)
	if err != nil {
		return fmt.Errorf("reading outline of %s: %w", bodyPath, err)
	}

	outline := res.Outline
	if outline == nil {
		outline = []staticmd.OutlineEntry{}
	}
	if flags.json {
		return writeJSON(env.Stdout, outline)
	}

	width := flags.width
	if width == 0 {
		width = env.TermWidth()
	}
	printOutline(env.Stdout, outline, width)
	return nil
}

// printOutline writes one bullet per heading, indented two columns per
// level below h1 and wrapped to width with a hanging indent.
func printOutline(w io.Writer, outline []staticmd.OutlineEntry, width int) {
	if len(outline) == 0 {
		fmt.Fprintln(w, "(no headings)")
		return
	}
	for _, e := range outline {
		pad := uint(2 * max(e.Level-1, 0)) // #nosec G115 -- level is 1-3
		limit := max(width-int(pad)-2, minOutlineWidth)

		lines := strings.Split(wordwrap.String(e.Text, limit), "\n")
		for i, line := range lines {
			if i == 0 {
				lines[i] = "- " + line
			} else {
				lines[i] = "  " + line
			}
		}
		fmt.Fprintln(w, indent.String(strings.Join(lines, "\n"), pad))
	}
}
