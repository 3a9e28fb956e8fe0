package endpoint

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// foreignColumn is the zero based column of the foreign address in netstat output
const foreignColumn = 4

// Netstat lists endpoints by running a network statistics utility and reading
// the foreign address column of its output
type Netstat struct {
	command     []string
	headerLines int
}

// NewNetstat returns a Netstat lister which runs command and skips the first
// headerLines lines of its output
func NewNetstat(command []string, headerLines int) *Netstat {
	return &Netstat{
		command:     command,
		headerLines: headerLines,
	}
}

// List runs the command and returns the foreign endpoints it reports
func (n *Netstat) List(ctx context.Context) ([]string, error) {
	if len(n.command) == 0 {
		return nil, fmt.Errorf("no netstat command configured")
	}

	cmd := exec.CommandContext(ctx, n.command[0], n.command[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("running %s: %w: %s", n.command[0], err, msg)
		}
		return nil, fmt.Errorf("running %s: %w", n.command[0], err)
	}

	return parseForeignColumn(out, n.headerLines), nil
}

// parseForeignColumn extracts the fifth whitespace delimited column of every
// data row. Rows too short to carry the column are skipped.
func parseForeignColumn(out []byte, headerLines int) []string {
	var endpoints []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	line := 0
	for scanner.Scan() {
		line++
		if line <= headerLines {
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) <= foreignColumn {
			continue
		}
		endpoints = append(endpoints, fields[foreignColumn])
	}
	return endpoints
}
