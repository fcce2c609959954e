package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start an interactive session (default without a command)",
		Flags:  replFlags(),
		Action: runREPL,
	}
}

func replFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "history",
			Usage:   "History file; empty disables persistence",
			EnvVars: []string{"RESPKV_HISTORY"},
			Value:   repl.DefaultHistoryFile(),
		},
	}
}

func runREPL(c *cli.Context) error {
	// The root action has no history flag and uses the default file.
	historyFile := repl.DefaultHistoryFile()
	if c.Command != nil && c.Command.Name == "repl" {
		historyFile = c.String("history")
	}

	return withClient(c, func(ctx context.Context, client *connection.Client) error {
		r := repl.New(client, getFormatter(c),
			repl.WithIO(c.App.Reader, c.App.Writer),
			repl.WithHistory(repl.NewHistory(historyFile)),
		)
		return r.Run(ctx)
	})
}
