package connection

import (
	"fmt"
	"strings"
	"time"

	"github.com/activecm/connlog/util"
)

const (
	timeToken   = "TIME:"
	ipToken     = "IP:"
	domainToken = "DOMAIN:"
)

// Entry is one parsed log line
type Entry struct {
	Timestamp string
	Address   string
	// Domain is only set for report lines
	Domain string
}

// ParseError is returned when a log line does not follow the expected layout
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Text)
}

// Parse reads a scan log line. The line is split on single spaces and must
// read TIME: <timestamp parts...> IP: <address>.
func Parse(line string) (Entry, error) {
	text := strings.TrimSpace(line)
	tokens := strings.Split(text, " ")
	n := len(tokens)

	switch {
	case n < 4:
		return Entry{}, &ParseError{Text: text, Reason: "too few fields"}
	case tokens[0] != timeToken:
		return Entry{}, &ParseError{Text: text, Reason: "missing TIME: marker"}
	case tokens[n-2] != ipToken:
		return Entry{}, &ParseError{Text: text, Reason: "missing IP: marker"}
	case tokens[n-1] == "":
		return Entry{}, &ParseError{Text: text, Reason: "empty address"}
	}

	return Entry{
		Timestamp: strings.Join(tokens[1:n-2], " "),
		Address:   tokens[n-1],
	}, nil
}

// ParseReport reads a resolved report line. The address column may be padded
// so the line is split on its markers instead of single spaces.
func ParseReport(line string) (Entry, error) {
	// keep trailing spaces, an empty domain renders as "DOMAIN: "
	text := strings.TrimLeft(strings.TrimRight(line, "\r\n"), " ")
	if !strings.HasPrefix(text, timeToken) {
		return Entry{}, &ParseError{Text: text, Reason: "missing TIME: marker"}
	}

	ipMarker := " " + ipToken + " "
	domainMarker := " " + domainToken + " "

	// markers are searched left to right so each slice starts after the last
	afterTime := text[len(timeToken):]
	ipAt := strings.Index(afterTime, ipMarker)
	if ipAt < 0 {
		return Entry{}, &ParseError{Text: text, Reason: "missing IP: marker"}
	}
	afterIP := " " + afterTime[ipAt+len(ipMarker):]
	domainAt := strings.Index(afterIP, domainMarker)
	if domainAt < 0 {
		return Entry{}, &ParseError{Text: text, Reason: "missing DOMAIN: marker"}
	}

	entry := Entry{
		Timestamp: strings.TrimSpace(afterTime[:ipAt]),
		Address:   strings.TrimSpace(afterIP[:domainAt]),
		Domain:    strings.TrimSpace(afterIP[domainAt+len(domainMarker):]),
	}
	switch {
	case entry.Timestamp == "":
		return Entry{}, &ParseError{Text: text, Reason: "empty timestamp"}
	case entry.Address == "":
		return Entry{}, &ParseError{Text: text, Reason: "empty address"}
	}
	return entry, nil
}

// ParseLine reads either layout, choosing by the DOMAIN: marker
func ParseLine(line string) (Entry, error) {
	if strings.Contains(line, " "+domainToken) {
		return ParseReport(line)
	}
	return Parse(line)
}

// Render returns the scan log line for e
func (e Entry) Render() string {
	return fmt.Sprintf("TIME: %s IP: %s\n", e.Timestamp, e.Address)
}

// RenderResolved returns the report line for e
func (e Entry) RenderResolved() string {
	return RenderReport(e.Timestamp, e.Address, e.Domain)
}

// Time parses the entry timestamp in the local zone
func (e Entry) Time() (time.Time, error) {
	return time.ParseInLocation(util.DisplayTimeFormat, e.Timestamp, time.Local)
}
