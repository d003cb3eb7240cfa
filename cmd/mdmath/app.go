package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/assets"
	"github.com/alnah/go-mdmath/internal/config"
	"github.com/alnah/go-mdmath/internal/fileutil"
	"github.com/alnah/go-mdmath/internal/hints"
	"github.com/alnah/go-mdmath/internal/pipeline"
)

// commands lists the subcommand names recognized as the first argument.
var commands = []string{"convert", "serve", "config", "styles", "doctor", "version", "help"}

// isCommand reports whether arg names a subcommand.
func isCommand(arg string) bool {
	return slices.Contains(commands, arg)
}

// run dispatches args (without the program name) and returns an exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	if len(args) == 0 {
		if !env.StdinIsTerminal() {
			return finish(runConvertCmd(ctx, nil, env), env)
		}
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "convert":
		return finish(runConvertCmd(ctx, rest, env), env)
	case "serve":
		return finish(runServeCmd(ctx, rest, env), env)
	case "config":
		return finish(runConfigCmd(rest, env), env)
	case "styles":
		return finish(runStylesCmd(env), env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdmath %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return finish(runHelp(rest, env), env)
	}

	// Flags and markdown paths convert without naming the command.
	if strings.HasPrefix(cmd, "-") || fileutil.IsMarkdown(cmd) || pathExists(cmd) {
		return finish(runConvertCmd(ctx, args, env), env)
	}

	fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
	fmt.Fprintln(env.Stderr, "Run 'mdmath help' for usage.")
	return ExitUsage
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// finish prints err and maps it to an exit code.
func finish(err error, env *Environment) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "mdmath: %v%s\n", err, hintFor(err, env))
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, mdmath.ErrBrowserConnect):
		return hints.ForBrowserConnect(env.Getenv)
	case errors.Is(err, mdmath.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		dir, _ := os.UserConfigDir()
		return hints.ForConfigNotFound(dir)
	case errors.Is(err, ErrNoInput):
		return hints.ForNoInput()
	case errors.Is(err, mdmath.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, mdmath.ErrUnknownHighlightStyle):
		return hints.ForHighlightStyle()
	case errors.Is(err, mdmath.ErrUnknownRecognizer):
		return hints.ForRecognizer([]string{
			mdmath.RecognizerBlockMath, mdmath.RecognizerDisplayMath, mdmath.RecognizerInlineMath,
		})
	}
	return ""
}

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var configName string
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")
	fs.Usage = func() { printConfigUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: config takes no arguments, got %q", ErrUsage, strings.Join(fs.Args(), " "))
	}

	cfg, err := loadConfig(configName, loadEnvConfig(env.Getenv))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}

// runStylesCmd lists document and code highlighting styles.
func runStylesCmd(env *Environment) error {
	fmt.Fprintln(env.Stdout, "Document styles (--style):")
	printParagraph(env.Stdout, strings.Join(assets.StyleNames(), "  "), 2)
	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "Code highlighting styles (--highlight):")
	printParagraph(env.Stdout, strings.Join(pipeline.HighlightStyles(), "  "), 2)
	return nil
}
