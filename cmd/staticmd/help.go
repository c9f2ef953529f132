package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export a markdown file as a self-contained HTML page")
	fmt.Fprintln(w, "  preview    Serve a live preview that follows file changes")
	fmt.Fprintln(w, "  outline    Print the heading outline of a markdown file")
	fmt.Fprintln(w, "  themes     List themes and fonts")
	fmt.Fprintln(w, "  templates  List document templates")
	fmt.Fprintln(w, "  doctor     Check the diagram browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'staticmd help <command>' for details on a specific command.")
}

func printDocumentFlags(w io.Writer) {
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -t, --theme <s>           Theme: modern, sepia, cyber, notebook")
	fmt.Fprintln(w, "  -f, --font <s>            Font: sans, serif, mono")
	fmt.Fprintln(w, "      --font-size <n>       Font size in px (12-28, default 16)")
	fmt.Fprintln(w, "      --template <s>        Document template (see 'staticmd templates')")
	fmt.Fprintln(w, "      --lang <s>            Exported <html lang> (default en)")
	fmt.Fprintln(w, "      --math                Render $...$ as MathML")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w)
}

func printSegmentFlags(w io.Writer) {
	fmt.Fprintln(w, "Header/Footer:")
	fmt.Fprintln(w, "      --header <md>         Header markdown")
	fmt.Fprintln(w, "      --header-file <path>  Header markdown file")
	fmt.Fprintln(w, "      --header-pos <s>      Header position: flow, sticky")
	fmt.Fprintln(w, "      --footer <md>         Footer markdown")
	fmt.Fprintln(w, "      --footer-file <path>  Footer markdown file")
	fmt.Fprintln(w, "      --footer-pos <s>      Footer position: flow, sticky")
	fmt.Fprintln(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "      --log-json            Write logs as JSON")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd export <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a markdown file as a single HTML page. Diagrams render in the")
	fmt.Fprintln(w, "reader's browser when the page loads.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory, - for stdout")
	fmt.Fprintln(w, "                            (default: static-page-<theme>.html next to input)")
	fmt.Fprintln(w)
	printDocumentFlags(w)
	printSegmentFlags(w)
	printCommonFlags(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd preview <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a live preview. Edits to the input file, or PUT /api/document,")
	fmt.Fprintln(w, "re-render the page in every connected browser.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:4173)")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before a render (default 150ms)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagrams:")
	fmt.Fprintln(w, "      --no-diagrams         Leave diagram blocks as source")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome binary (default: ROD_BROWSER_BIN or download)")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox (Docker/CI)")
	fmt.Fprintln(w, "      --diagram-timeout <d> Per-diagram render timeout (default 30s)")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent diagram renders (0 = auto)")
	fmt.Fprintln(w)
	printDocumentFlags(w)
	printSegmentFlags(w)
	printCommonFlags(w)
}

// printOutlineUsage prints usage for the outline command.
func printOutlineUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd outline <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the h1-h3 outline with the anchors used in the exported page.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print the outline as JSON")
	fmt.Fprintln(w, "      --width <n>           Wrap width (default: terminal width)")
	fmt.Fprintln(w)
	printDocumentFlags(w)
	printCommonFlags(w)
}

func printThemesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd themes [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List themes and fonts.")
}

func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd templates [--json] [--config <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List document templates, including those of assets.basePath.")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: staticmd doctor [--json] [--config <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the diagram browser, sandbox settings, and config file.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "export":
		printExportUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "outline":
		printOutlineUsage(env.Stdout)
	case "themes":
		printThemesUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: staticmd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: staticmd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
