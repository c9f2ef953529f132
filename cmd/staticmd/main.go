package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	staticmd "github.com/alnah/go-staticmd"
	"github.com/alnah/go-staticmd/internal/config"
	"github.com/alnah/go-staticmd/internal/hints"
	"github.com/alnah/go-staticmd/internal/theme"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()
	args := os.Args[1:]

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if slices.Contains(args, "-v") || slices.Contains(args, "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", a...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, args, env)
	stop()
	os.Exit(code)
}

// runMain dispatches a command and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "export":
		err = runExport(ctx, rest, env)
	case "preview":
		err = runPreview(ctx, rest, env)
	case "outline":
		err = runOutline(ctx, rest, env)
	case "themes":
		err = runThemes(rest, env)
	case "templates":
		err = runTemplates(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "staticmd %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, staticmd.ErrBrowserConnect),
		errors.Is(err, staticmd.ErrPageCreate),
		errors.Is(err, staticmd.ErrPageLoad):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForDiagramTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, staticmd.ErrUnknownTheme):
		return hints.ForChoices(theme.IDs())
	case errors.Is(err, staticmd.ErrUnknownFont):
		return hints.ForChoices(theme.FontIDs())
	case errors.Is(err, staticmd.ErrTemplateNotFound):
		return hints.ForChoices(templateIDs())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, syscall.EADDRINUSE):
		return hints.ForAddressInUse()
	case errors.Is(err, ErrNoInput), errors.Is(err, ErrUsage):
		return "\n  hint: run 'staticmd help' for usage"
	}
	return ""
}

// templateIDs lists the embedded template identifiers.
func templateIDs() []string {
	c, err := staticmd.NewCompiler()
	if err != nil {
		return nil
	}
	templates, err := c.Templates()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}
	return ids
}
