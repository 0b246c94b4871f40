package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command names.
const (
	cmdServe   = "serve"
	cmdExport  = "export"
	cmdVersion = "version"
	cmdHelp    = "help"
)

// Sentinel errors for the CLI.
var (
	ErrNoInput        = errors.New("no document specified")
	ErrTooManyInputs  = errors.New("expected a single document")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidFlag    = errors.New("invalid flag")
	ErrListen         = errors.New("failed to listen")
	ErrReadCSS        = errors.New("failed to read CSS file")
	ErrWriteOutput    = errors.New("failed to write output file")
)

// runMain runs the command line and returns the process exit code.
// args includes the program name.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	err := run(ctx, args, env)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	fmt.Fprintln(env.Stderr, err)
	return exitCodeFor(err)
}

// run dispatches to a command. Arguments that do not name a command are
// handed to serve, so "mdview notes.md" views notes.md.
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ErrNoInput
	}

	switch args[0] {
	case cmdServe:
		return runServe(ctx, args[1:], env)
	case cmdExport:
		return runExport(ctx, args[1:], env)
	case cmdVersion, "--version":
		fmt.Fprintf(env.Stdout, "go-mdview %s\n", Version)
		return nil
	case cmdHelp, "-h", "--help":
		topic := ""
		if len(args) > 1 {
			topic = args[1]
		}
		return printHelp(env.Stdout, topic)
	}

	return runServe(ctx, args, env)
}

// singleDocument returns the only positional argument.
func singleDocument(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", ErrNoInput
	case 1:
		return positional[0], nil
	}
	return "", fmt.Errorf("%w, got %s", ErrTooManyInputs, strings.Join(positional, " "))
}

// flagError maps a parse error to a usage error, leaving --help alone.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
}

// newLogger returns a text logger on w. Verbose enables debug records,
// quiet keeps errors only.
func newLogger(w io.Writer, common commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
