package main

import (
	"os"

	"github.com/activecm/connlog/commands"
	"github.com/activecm/connlog/config"
	"github.com/urfave/cli"
)

// Entry point of connlog
func main() {
	app := cli.NewApp()
	app.Name = "connlog"
	app.Usage = "Keep a deduplicated log of outbound connections and find out who owns them."

	// Change the version string with updates so that a quick help command will
	// let the testers know what version they're on
	app.Version = config.Version

	// Define commands used with this application
	app.Commands = commands.Commands()

	if err := app.Run(os.Args); err != nil {
		os.Exit(-1)
	}
}
