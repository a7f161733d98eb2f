package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/pgdiscovery/internal/config"
	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/koustreak/pgdiscovery/internal/schema"
)

// command is one pgdiscover subcommand.
type command struct {
	name  string
	usage string
	// arg names the required positional argument, if any.
	arg string
	// flags registers command-specific flags.
	flags func(fs *flag.FlagSet, inv *invocation)
	run   func(ctx context.Context, a *app, inv *invocation) error
}

// invocation is the parsed command line.
type invocation struct {
	configPath string
	envFile    string
	format     string
	opts       discovery.Options
	arg        string

	publish bool
	presign time.Duration
}

var commands = map[string]*command{}

func register(c *command) {
	commands[c.name] = c
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: pgdiscover <command> [flags] [argument]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].usage)
	}
}

// parse reads flags for c from args. Flags may precede or follow the
// positional argument.
func parse(c *command, args []string, stderr io.Writer) (*invocation, error) {
	inv := &invocation{}

	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&inv.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&inv.envFile, "env", "", "path to a .env file (default: ./.env when present)")
	fs.StringVar(&inv.format, "format", "json", "output format: json or yaml")
	fs.StringVar(&inv.opts.Owner, "owner", "", "schema that owns the objects")
	fs.StringVar(&inv.opts.Schema, "schema", "", "synonym for -owner")
	fs.BoolVar(&inv.opts.All, "all", false, "list every schema when no owner is given")
	fs.BoolVar(&inv.opts.Views, "views", false, "include views after tables")
	fs.IntVar(&inv.opts.Offset, "offset", 0, "rows to skip")
	fs.IntVar(&inv.opts.Skip, "skip", 0, "synonym for -offset")
	fs.IntVar(&inv.opts.Limit, "limit", 0, "maximum rows to return (0 = no limit)")
	if c.flags != nil {
		c.flags(fs, inv)
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidArgument, "invalid flags for "+c.name, err)
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	switch {
	case c.arg == "" && len(positional) > 0:
		return nil, errs.InvalidArgument("%s takes no arguments, got %q", c.name, strings.Join(positional, " "))
	case c.arg != "" && len(positional) != 1:
		return nil, errs.InvalidArgument("%s requires exactly one <%s> argument", c.name, c.arg)
	case c.arg != "":
		inv.arg = positional[0]
	}
	return inv, nil
}

// run executes the command named by args[0].
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return errs.InvalidArgument("no command given")
		}
		return nil
	}

	c, ok := commands[args[0]]
	if !ok {
		usage(stderr)
		return errs.InvalidArgument("unknown command %q", args[0])
	}

	inv, err := parse(c, args[1:], stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	format, err := schema.ParseFormat(inv.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(inv.configPath, inv.envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a := newApp(cfg, stdout, stderr, format)
	defer a.close()

	return c.run(ctx, a, inv)
}
