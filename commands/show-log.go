package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/activecm/connlog/pkg/connection"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:      "show-log",
		Usage:     "Print the entries of a scan log or resolved report",
		ArgsUsage: "<scan log>",
		Flags: []cli.Flag{
			humanFlag,
			delimFlag,
		},
		Action: func(c *cli.Context) error {
			path := c.Args().Get(0)
			if path == "" {
				return cli.NewExitError("Specify a scan log", -1)
			}

			data, err := readLogEntries(path)
			if err != nil {
				return cli.NewExitError(err, -1)
			}

			if !(len(data) > 0) {
				return cli.NewExitError("No entries were found in "+path, -1)
			}

			if c.Bool("human-readable") {
				showLogHuman(data)
				return nil
			}
			showLog(data, c.String("delimiter"))
			return nil
		},
	}
	bootstrapCommands(command)
}

// readLogEntries parses each non-empty line of path as either a report line
// or a plain scan log line
func readLogEntries(path string) ([]connection.Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var entries []connection.Entry
	scanner := bufio.NewScanner(fh)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := connection.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNum, err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

func showLog(entries []connection.Entry, delim string) {
	// Print the headers and values, separated by a delimiter
	fmt.Println(strings.Join([]string{"Time", "IP", "Domain"}, delim))
	for _, entry := range entries {
		fmt.Println(strings.Join([]string{entry.Timestamp, entry.Address, entry.Domain}, delim))
	}
}

func showLogHuman(entries []connection.Entry) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "IP", "Domain"})
	for _, entry := range entries {
		table.Append([]string{entry.Timestamp, entry.Address, entry.Domain})
	}
	table.Render()
}
