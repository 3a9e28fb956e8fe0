package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/activecm/connlog/util"
	"github.com/blang/semver"
)

// RetentionMode defines how long previously seen connections suppress
// re-logging
type RetentionMode int

const (
	//RetainWindow keeps every record until it falls out of the freshness
	//window, regardless of how many cycles have passed.
	RetainWindow RetentionMode = 0

	//RetainCycle keeps only the previous cycle's batch. Anything older is
	//forgotten even when it is still inside the freshness window, so an
	//address that stays connected is logged every other cycle.
	RetainCycle RetentionMode = 1
)

func (m RetentionMode) String() string {
	switch m {
	case RetainCycle:
		return "cycle"
	default:
		return "window"
	}
}

// FileIDScheme selects how scan log file identifiers are generated
type FileIDScheme int

const (
	//IDRandom joins five random zero padded three digit chunks with dashes
	IDRandom FileIDScheme = 0

	//IDUUID uses a random UUID
	IDUUID FileIDScheme = 1
)

type (
	//RunningCfg holds configuration options that are parsed at run time
	RunningCfg struct {
		Scan     ScanRunningCfg
		Storage  StorageRunningCfg
		Resolver ResolverRunningCfg
		Version  semver.Version
	}

	//ScanRunningCfg holds the parsed scanner settings
	ScanRunningCfg struct {
		Interval     time.Duration
		Window       time.Duration
		Retention    RetentionMode
		NeverInclude []*net.IPNet
	}

	//StorageRunningCfg holds the parsed storage settings
	StorageRunningCfg struct {
		IDScheme FileIDScheme
	}

	//ResolverRunningCfg holds the parsed resolver settings
	ResolverRunningCfg struct {
		Timeout time.Duration
	}
)

// initRunningConfig uses data in the static config to initialize
// the passed in running config
func initRunningConfig(static *StaticCfg, running *RunningCfg) error {
	var err error

	if static.Scan.Interval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %d", static.Scan.Interval)
	}
	if static.Scan.Window < 0 {
		return fmt.Errorf("scan window must not be negative, got %d", static.Scan.Window)
	}
	if static.Scan.HeaderLines < 0 {
		return fmt.Errorf("header line count must not be negative, got %d", static.Scan.HeaderLines)
	}
	if len(static.Scan.Command) == 0 {
		return fmt.Errorf("scan command must not be empty")
	}
	if static.Resolver.Timeout < 0 {
		return fmt.Errorf("resolver timeout must not be negative, got %d", static.Resolver.Timeout)
	}

	running.Scan.Interval = time.Duration(static.Scan.Interval) * time.Second
	running.Scan.Window = time.Duration(static.Scan.Window) * time.Second
	running.Resolver.Timeout = time.Duration(static.Resolver.Timeout) * time.Second

	running.Scan.Retention, err = parseRetention(static.Scan.Retention)
	if err != nil {
		return err
	}

	running.Storage.IDScheme, err = parseIDScheme(static.Storage.FileIDScheme)
	if err != nil {
		return err
	}

	running.Scan.NeverInclude, err = util.ParseSubnets(static.Scan.NeverInclude)
	if err != nil {
		return fmt.Errorf("invalid NeverInclude entry: %w", err)
	}

	running.Version, err = semver.ParseTolerant(static.Version)
	return err
}

func parseRetention(mode string) (RetentionMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "window":
		return RetainWindow, nil
	case "cycle":
		return RetainCycle, nil
	}
	return RetainWindow, fmt.Errorf("unknown retention mode %q", mode)
}

func parseIDScheme(scheme string) (FileIDScheme, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "random":
		return IDRandom, nil
	case "uuid":
		return IDUUID, nil
	}
	return IDRandom, fmt.Errorf("unknown file id scheme %q", scheme)
}
