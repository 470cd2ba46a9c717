// ftsarc packs directories into FTS archives and inspects, extracts, and
// edits existing ones. It also compresses and decompresses single files with
// the same codecs.
//
// Global flags come before the command:
//
//	ftsarc [--config file] [--log-level level] <command> [flags] args...
//
// The config file is YAML and supplies defaults for command flags. It is
// read from --config, or from FTSARC_CONFIG when the flag is not given.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/meigma/ftsarc/compress"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// usageError is returned for malformed command lines.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// ExitCode returns the process exit status for usage errors.
func (*usageError) ExitCode() int { return 2 }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// app carries what every command needs.
type app struct {
	fsys   afero.Fs
	stdout io.Writer
	stderr io.Writer
	cfg    Config
	codecs *compress.Factory
	logger *slog.Logger
}

func run(ctx context.Context, args []string, fsys afero.Fs, stdout, stderr io.Writer) error {
	global := pflag.NewFlagSet("ftsarc", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	configPath := global.String("config", os.Getenv("FTSARC_CONFIG"), "YAML file with command defaults")
	logLevel := global.String("log-level", "", "log level: debug, info, warn, or error")
	global.Usage = func() { printUsage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &usageError{msg: err.Error()}
	}

	cfg, err := LoadConfig(fsys, *configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr, global)
		return usagef("command required")
	}
	cmd, ok := lookupCommand(rest[0])
	if !ok {
		return usagef("unknown command %q, run 'ftsarc --help' for usage", rest[0])
	}

	a := &app{
		fsys:   fsys,
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		codecs: compress.NewFactory(),
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
	return cmd.run(ctx, a, rest[1:])
}

func printUsage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: ftsarc [global flags] <command> [flags] args...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-11s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, global.FlagUsages())
}

// flagSet returns a flag set for a command whose usage line is usage.
func (a *app) flagSet(name, usage string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.stderr)
	flags.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: ftsarc %s\n\n", usage)
		fmt.Fprint(a.stderr, flags.FlagUsages())
	}
	return flags
}

// parse parses args and checks the positional count. It returns
// pflag.ErrHelp after printing usage for -h.
func parse(flags *pflag.FlagSet, args []string, minArgs, maxArgs int) error {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &usageError{msg: fmt.Sprintf("%s: %v", flags.Name(), err)}
	}
	n := flags.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		flags.Usage()
		return usagef("%s: wrong number of arguments", flags.Name())
	}
	return nil
}

// codec resolves a compressor name. The empty name is the identity codec.
func (a *app) codec(name string) (compress.Compressor, error) {
	if name == "" {
		return compress.NewNone(), nil
	}
	c, ok := a.codecs.Lookup(name)
	if !ok {
		return nil, usagef("unknown compressor %q, run 'ftsarc codecs' for the list", name)
	}
	return c, nil
}
