package commands

import (
	"fmt"
	"os"

	"github.com/activecm/connlog/config"
	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v2"
)

func init() {
	command := cli.Command{
		Name:   "test-config",
		Usage:  "Check the configuration file for validity",
		Flags:  []cli.Flag{configFlag},
		Action: testConfiguration,
	}

	bootstrapCommands(command)
}

// testConfiguration prints out the result of parsing the config file
func testConfiguration(c *cli.Context) error {
	conf, err := config.LoadConfig(getConfigFilePath(c))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Failed to load config: %s", err.Error()), -1)
	}

	staticConfig, err := yaml.Marshal(conf.S)
	if err != nil {
		return cli.NewExitError(err, -1)
	}

	fmt.Fprintf(os.Stdout, "\n%s\n", string(staticConfig))
	fmt.Fprintf(os.Stdout, "Retention: %s\nInterval: %s\nWindow: %s\n",
		conf.R.Scan.Retention, conf.R.Scan.Interval, conf.R.Scan.Window)
	return nil
}
