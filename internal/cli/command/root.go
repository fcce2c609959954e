package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

const formatterKey = "formatter"

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:      "respkv-cli",
		Usage:     "respkv command-line client",
		UsageText: "respkv-cli [global options] [command [arguments...] | raw tokens...]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			REPLCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			f, err := newFormatter(ParseGlobalFlags(c))
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[formatterKey] = f
			return nil
		},
		Action: rootAction,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "respkv server address (host:port)",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and per-command timeout",
			EnvVars: []string{"RESPKV_TIMEOUT"},
			Value:   connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json",
			Value:   string(output.FormatText),
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
	Output  string // text, json
	NoColor bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
		Output:  c.String("output"),
		NoColor: c.Bool("no-color"),
	}
}

func newFormatter(flags *GlobalFlags) (output.Formatter, error) {
	format, ok := output.ParseFormat(flags.Output)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want text or json)", flags.Output)
	}
	// color.NoColor is set when stdout is not a terminal or NO_COLOR is set.
	return output.NewFormatter(format, !flags.NoColor && !color.NoColor), nil
}

// getFormatter retrieves the formatter built in Before.
func getFormatter(c *cli.Context) output.Formatter {
	if f, ok := c.App.Metadata[formatterKey].(output.Formatter); ok {
		return f
	}
	return output.NewFormatter(output.FormatText, false)
}

// withClient dials the server, runs fn and closes the connection.
func withClient(c *cli.Context, fn func(ctx context.Context, client *connection.Client) error) error {
	flags := ParseGlobalFlags(c)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := connection.Dial(ctx, flags.Server, flags.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

// send runs one command and prints its reply. An error reply exits with
// status 1 after printing.
func send(c *cli.Context, tokens ...string) error {
	return withClient(c, func(ctx context.Context, client *connection.Client) error {
		reply, err := client.Do(ctx, tokens...)
		if err != nil {
			return err
		}
		if err := getFormatter(c).Format(c.App.Writer, reply); err != nil {
			return err
		}
		if reply.Kind == domain.KindError {
			return cli.Exit("", 1)
		}
		return nil
	})
}

// rootAction sends raw tokens when given, otherwise starts the REPL.
func rootAction(c *cli.Context) error {
	if c.Args().Present() {
		return send(c, c.Args().Slice()...)
	}
	return runREPL(c)
}

// requireArgs checks the positional argument count.
func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() != n {
		return fmt.Errorf("usage: %s %s", c.Command.Name, usage)
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
