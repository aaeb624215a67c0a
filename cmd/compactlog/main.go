// Package main is the entry point for the compactlog command.
//
// compactlog wraps JavaScript expressions in self-describing console.log
// fragments and keeps their labels current:
//
//	compactlog toggle app.js 6:10-16   log foo.bar on line 6
//	compactlog list app.js             show the logs in a file
//	compactlog clear app.js            strip all logs, remembering where they were
//	compactlog restore app.js          put stripped logs back
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/compactlog/internal/config"
	"github.com/dshills/compactlog/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage reports bad arguments; the message has already been printed.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	name    string
	args    string
	summary string
	run     func(e *env, args []string) error
}

var commands = []command{
	{"toggle", "FILE LINE:COL[-END]", "add or remove the log at a position", cmdToggle},
	{"list", "FILE...", "list the logs in files", cmdList},
	{"sync", "FILE...", "bring stale log labels up to date", cmdSync},
	{"clear", "FILE", "strip every log and remember where they were", cmdClear},
	{"restore", "FILE", "restore logs stripped by clear", cmdRestore},
	{"view", "FILE", "show a file with its logs collapsed", cmdView},
	{"run", "SCRIPT FILE", "run a Lua script against a file", cmdRun},
	{"watch", "FILE...", "sync files whenever they change on disk", cmdWatch},
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compactlog", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		logLevel    string
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "compactlog.toml", "Path to configuration file")
	fs.StringVar(&configPath, "c", "compactlog.toml", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "compactlog - inline console.log annotations\n\n")
		fmt.Fprintf(stderr, "Usage: compactlog [options] COMMAND [args]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-8s %-22s %s\n", c.name, c.args, c.summary)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "compactlog %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	e := &env{
		cfg:    cfg,
		log:    logging.New(logging.Config{Level: cfg.LogLevel(), Output: stderr, Prefix: "compactlog"}),
		stdout: stdout,
		stderr: stderr,
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(e, rest); err != nil {
			if errors.Is(err, errUsage) {
				fmt.Fprintf(stderr, "Usage: compactlog %s %s\n", c.name, c.args)
				return 2
			}
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
	fs.Usage()
	return 2
}
