package commands

import (
	"github.com/urfave/cli"
)

var (
	allCommands []cli.Command

	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "Use a given `CONFIG_FILE` when running this command",
		Value: "",
	}

	humanFlag = cli.BoolFlag{
		Name:  "human-readable, H",
		Usage: "Print a report instead of csv",
	}

	delimFlag = cli.StringFlag{
		Name:  "delimiter, d",
		Usage: "Change the delimiter used when printing one entry per line",
		Value: " ",
	}
)

// bootstrapCommands simply adds a given command to the allCommands array
func bootstrapCommands(commands ...cli.Command) {
	allCommands = append(allCommands, commands...)
}

// Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

// getConfigFilePath returns the config file given on the command line. An
// empty path lets the config package search its default locations.
func getConfigFilePath(c *cli.Context) string {
	return c.String("config")
}
