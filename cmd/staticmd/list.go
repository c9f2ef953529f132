package main

import (
	"encoding/json"
	"fmt"
	"io"

	staticmd "github.com/alnah/go-staticmd"
)

// runThemes lists the themes and fonts a document can use.
func runThemes(args []string, env *Environment) error {
	flags, err := parseListFlags("themes", args, env.Stderr, printThemesUsage)
	if err != nil {
		return err
	}

	themes, fonts := staticmd.Themes(), staticmd.Fonts()
	if flags.json {
		return writeJSON(env.Stdout, struct {
			Themes []staticmd.ThemeInfo `json:"themes"`
			Fonts  []staticmd.FontInfo  `json:"fonts"`
		}{themes, fonts})
	}

	fmt.Fprintln(env.Stdout, "Themes:")
	for _, t := range themes {
		mark := ""
		if t.ID == staticmd.DefaultTheme {
			mark = " (default)"
		}
		fmt.Fprintf(env.Stdout, "  %-10s %s%s\n", t.ID, t.Name, mark)
	}
	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "Fonts:")
	for _, f := range fonts {
		mark := ""
		if f.ID == staticmd.DefaultFont {
			mark = " (default)"
		}
		fmt.Fprintf(env.Stdout, "  %-10s %s%s\n", f.ID, f.Stack, mark)
	}
	return nil
}

// runTemplates lists the document templates, including those of a
// custom asset directory.
func runTemplates(args []string, env *Environment) error {
	flags, err := parseListFlags("templates", args, env.Stderr, printTemplatesUsage)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	compiler, err := newCompiler(cfg, newLogger(env.Stderr, flags.common))
	if err != nil {
		return err
	}
	templates, err := compiler.Templates()
	if err != nil {
		return err
	}

	if flags.json {
		return writeJSON(env.Stdout, templates)
	}
	for _, t := range templates {
		fmt.Fprintf(env.Stdout, "  %-10s %s\n", t.ID, t.Name)
		if t.Description != "" {
			fmt.Fprintf(env.Stdout, "  %-10s %s\n", "", t.Description)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
