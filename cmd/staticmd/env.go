package main

import (
	"io"
	"os"

	"golang.org/x/term"
)

// defaultTermWidth is used when stdout is not a terminal.
const defaultTermWidth = 80

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Getenv    func(string) string
	Environ   func() []string
	TermWidth func() int
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		Environ:   os.Environ,
		TermWidth: stdoutWidth,
	}
}

// stdoutWidth returns the terminal width of stdout, or defaultTermWidth.
func stdoutWidth() int {
	fd := int(os.Stdout.Fd()) // #nosec G115 -- file descriptors fit in int
	if !term.IsTerminal(fd) {
		return defaultTermWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}
