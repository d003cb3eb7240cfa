package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()
	configureMaxProcs(os.Args[1:], env.Stderr)

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], env)
	stop()
	os.Exit(code)
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota, logging
// the decision only with --verbose.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply.
func configureMaxProcs(args []string, stderr io.Writer) {
	logf := func(string, ...any) {}
	if slices.Contains(args, "-v") || slices.Contains(args, "--verbose") {
		logf = func(format string, a ...any) {
			fmt.Fprintf(stderr, format+"\n", a...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}
