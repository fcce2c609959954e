package command

import (
	"errors"
	"fmt"
	"math"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/core/domain"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			return send(c, domain.Ping{}.Args()...)
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Have the server repeat a message",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "<message>"); err != nil {
				return err
			}
			return send(c, domain.Echo{Message: c.Args().First()}.Args()...)
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "<key>"); err != nil {
				return err
			}
			return send(c, domain.Get{Key: c.Args().First()}.Args()...)
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Write a key, optionally with a TTL and a condition",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "ex",
				Usage: "Expire after this many seconds",
			},
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "Expire after this many milliseconds",
			},
			&cli.BoolFlag{
				Name:  "nx",
				Usage: "Only set if the key does not exist",
			},
			&cli.BoolFlag{
				Name:  "xx",
				Usage: "Only set if the key exists",
			},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2, "<key> <value>"); err != nil {
				return err
			}
			cmd, err := buildSet(c)
			if err != nil {
				return err
			}
			return send(c, cmd.Args()...)
		},
	}
}

// buildSet turns the set flags into a command.
func buildSet(c *cli.Context) (domain.Set, error) {
	cmd := domain.Set{
		Key:   c.Args().Get(0),
		Value: c.Args().Get(1),
	}

	switch {
	case c.IsSet("ex") && c.IsSet("px"):
		return cmd, errors.New("--ex and --px are mutually exclusive")
	case c.IsSet("ex"):
		secs := c.Uint64("ex")
		if secs > math.MaxUint32 {
			return cmd, fmt.Errorf("--ex %d is out of range", secs)
		}
		cmd.Expiry = domain.ExpireSeconds(uint32(secs))
	case c.IsSet("px"):
		cmd.Expiry = domain.ExpireMillis(c.Uint64("px"))
	}

	switch {
	case c.Bool("nx") && c.Bool("xx"):
		return cmd, errors.New("--nx and --xx are mutually exclusive")
	case c.Bool("nx"):
		cmd.Condition = domain.OnlyIfAbsent
	case c.Bool("xx"):
		cmd.Condition = domain.OnlyIfPresent
	}

	return cmd, nil
}
