package command

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print client build information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			if format, _ := output.ParseFormat(ParseGlobalFlags(c).Output); format == output.FormatJSON {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err := fmt.Fprintf(c.App.Writer, "respkv-cli %s\n", info)
			return err
		},
	}
}
