package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-staticmd/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	logJSON bool
}

// documentFlags holds presentation flags for the rendered document.
type documentFlags struct {
	theme     string
	font      string
	fontSize  int
	template  string
	lang      string
	math      bool
	assetPath string
}

// segmentFlags holds header or footer flags.
type segmentFlags struct {
	text     string
	file     string
	position string
}

// diagramFlags holds headless-browser renderer flags.
type diagramFlags struct {
	disabled   bool
	browserBin string
	noSandbox  bool
	timeout    string
	workers    int
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common   commonFlags
	document documentFlags
	header   segmentFlags
	footer   segmentFlags
	output   string
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common   commonFlags
	document documentFlags
	header   segmentFlags
	footer   segmentFlags
	diagram  diagramFlags
	addr     string
	debounce string
}

// outlineFlags holds all flags for the outline command.
type outlineFlags struct {
	common   commonFlags
	document documentFlags
	json     bool
	width    int
}

// listFlags holds flags for the themes and templates commands.
type listFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")
}

// addDocumentFlags adds presentation flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.theme, "theme", "t", "", "theme: modern, sepia, cyber, notebook")
	fs.StringVarP(&f.font, "font", "f", "", "font: sans, serif, mono")
	fs.IntVar(&f.fontSize, "font-size", 0, "font size in px (12-28, 0 = 16)")
	fs.StringVar(&f.template, "template", "", "document template name")
	fs.StringVar(&f.lang, "lang", "", "exported document language (default: en)")
	fs.BoolVar(&f.math, "math", false, "render $...$ as MathML")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addSegmentFlags adds header or footer flags to a FlagSet.
func addSegmentFlags(fs *flag.FlagSet, name string, f *segmentFlags) {
	fs.StringVar(&f.text, name, "", name+" markdown")
	fs.StringVar(&f.file, name+"-file", "", name+" markdown file")
	fs.StringVar(&f.position, name+"-pos", "", name+" position: flow, sticky")
}

// addDiagramFlags adds renderer flags to a FlagSet.
func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.BoolVar(&f.disabled, "no-diagrams", false, "leave diagram blocks as source")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome binary for diagrams")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.StringVar(&f.timeout, "diagram-timeout", "", "per-diagram render timeout (e.g. 30s)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent diagram renders (0 = auto)")
}

func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse wraps pflag errors so they map to the usage exit code. pflag
// prints the command usage itself for -h.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newFlagSet("export", stderr, printExportUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (- = stdout)")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addSegmentFlags(fs, "header", &f.header)
	addSegmentFlags(fs, "footer", &f.footer)

	rest, err := parse(fs, args)
	return f, rest, err
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string, stderr io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := newFlagSet("preview", stderr, printPreviewUsage)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default: "+config.DefaultAddr+")")
	fs.StringVar(&f.debounce, "debounce", "", "quiet period before a render (e.g. 150ms)")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addSegmentFlags(fs, "header", &f.header)
	addSegmentFlags(fs, "footer", &f.footer)
	addDiagramFlags(fs, &f.diagram)

	rest, err := parse(fs, args)
	return f, rest, err
}

// parseOutlineFlags parses outline command flags and returns positional args.
func parseOutlineFlags(args []string, stderr io.Writer) (*outlineFlags, []string, error) {
	f := &outlineFlags{}
	fs := newFlagSet("outline", stderr, printOutlineUsage)
	fs.BoolVar(&f.json, "json", false, "print the outline as JSON")
	fs.IntVar(&f.width, "width", 0, "wrap width (0 = terminal width)")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)

	rest, err := parse(fs, args)
	return f, rest, err
}

// parseListFlags parses flags for the listing commands.
func parseListFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (*listFlags, error) {
	f := &listFlags{}
	fs := newFlagSet(name, stderr, usage)
	fs.BoolVar(&f.json, "json", false, "print as JSON")
	addCommonFlags(fs, &f.common)

	rest, err := parse(fs, args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %s takes no arguments", ErrUsage, name)
	}
	return f, nil
}

// mergeDocumentFlags applies set flags over cfg (CLI wins).
func mergeDocumentFlags(f *documentFlags, cfg *config.Config) {
	if f.theme != "" {
		cfg.Document.Theme = f.theme
	}
	if f.font != "" {
		cfg.Document.Font = f.font
	}
	if f.fontSize != 0 {
		cfg.Document.FontSize = f.fontSize
	}
	if f.template != "" {
		cfg.Document.Template = f.template
	}
	if f.lang != "" {
		cfg.Document.Lang = f.lang
	}
	if f.math {
		cfg.Document.Math = true
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}

// mergeSegmentFlags applies set flags over a header or footer section.
// Inline text and file replace each other.
func mergeSegmentFlags(f *segmentFlags, seg *config.SegmentConfig) {
	if f.text != "" {
		seg.Text, seg.File = f.text, ""
	}
	if f.file != "" {
		seg.File, seg.Text = f.file, ""
	}
	if f.position != "" {
		seg.Position = f.position
	}
}

// mergeDiagramFlags applies set flags over the diagram section.
func mergeDiagramFlags(f *diagramFlags, cfg *config.Config) {
	if f.disabled {
		cfg.Diagram.Enabled = false
	}
	if f.browserBin != "" {
		cfg.Diagram.BrowserBin = f.browserBin
	}
	if f.noSandbox {
		cfg.Diagram.NoSandbox = true
	}
	if f.timeout != "" {
		cfg.Diagram.Timeout = f.timeout
	}
	if f.workers != 0 {
		cfg.Diagram.Workers = f.workers
	}
}
