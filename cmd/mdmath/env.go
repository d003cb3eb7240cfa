package main

import (
	"io"
	"os"

	"golang.org/x/term"

	mdmath "github.com/alnah/go-mdmath"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsTerminal reports whether Stdin is interactive. Piped input
	// is converted when no file arguments are given.
	StdinIsTerminal func() bool

	// Getenv and Environ read MDMATH_* variables.
	Getenv  func(string) string
	Environ func() []string

	// NewPool creates the converter pool for a command.
	NewPool func(size int, opts ...mdmath.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		StdinIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115 -- fd fits in int
		},
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewPool: newConverterPool,
	}
}

// terminalWidth returns the width of w when it is a terminal, or fallback.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd())) // #nosec G115 -- fd fits in int
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
