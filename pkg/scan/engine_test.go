package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/activecm/connlog/config"
	"github.com/activecm/connlog/pkg/connection"
	"github.com/activecm/connlog/pkg/endpoint"
	"github.com/activecm/connlog/pkg/logstore"
	"github.com/activecm/connlog/resources"
	"github.com/activecm/connlog/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out instants set by the test
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type failingStore struct {
	path string
}

func (s *failingStore) Append([]connection.Record) error {
	return &logstore.PersistenceError{Path: s.path, Err: os.ErrPermission}
}

func (s *failingStore) Path() string { return s.path }

type mapNamer map[string]string

func (m mapNamer) Name(_ context.Context, address string) string {
	if name, ok := m[address]; ok {
		return name
	}
	return address
}

func newTestEngine(t *testing.T, mode config.RetentionMode, source endpoint.Lister) (*Engine, *fakeClock, string) {
	t.Helper()
	res, _ := resources.InitTestResources(t)
	res.Config.R.Scan.Retention = mode

	path := filepath.Join(res.Config.S.Storage.Directory, "log-test.txt")
	engine := NewEngine(res, source, logstore.NewFile(path, false), nil)
	clock := &fakeClock{now: start}
	engine.now = clock.Now
	return engine, clock, path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	contents, err := os.ReadFile(path)
	require.Nil(t, err)
	text := strings.TrimSuffix(string(contents), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func addressesIn(t *testing.T, path string) []string {
	t.Helper()
	var out []string
	for _, line := range readLines(t, path) {
		entry, err := connection.Parse(line)
		require.Nil(t, err)
		out = append(out, entry.Address)
	}
	return out
}

func TestTickFiltersAndDedups(t *testing.T) {
	source := endpoint.NewFixed([]string{"203.0.113.5:443", "10.0.0.2:80", "203.0.113.5:443"})
	engine, _, path := newTestEngine(t, config.RetainWindow, source)

	stats, err := engine.Tick(context.Background())
	require.Nil(t, err)

	assert.Equal(t, TickStats{Seen: 3, Public: 2, Admitted: 1, Retained: 0}, stats)
	assert.Equal(t, []string{"TIME: 2024-01-01 12:00:00.000000 IP: 203.0.113.5"}, readLines(t, path))
	assert.Equal(t, Idle, engine.Phase())
}

func TestTickNeverLogsPrivatePrefixes(t *testing.T) {
	source := endpoint.NewFixed([]string{
		"10.1.2.3:443",
		"172.16.0.4:80",
		"172.217.3.110:443",
		"192.168.1.1:53",
		"192.0.2.10:22",
		"127.0.0.1:631",
		"8.8.8.8:53",
	})
	engine, _, path := newTestEngine(t, config.RetainWindow, source)

	_, err := engine.Tick(context.Background())
	require.Nil(t, err)

	logged := addressesIn(t, path)
	assert.Equal(t, []string{"8.8.8.8"}, logged)
	for _, address := range logged {
		assert.False(t, util.HasAnyPrefix(address, []string{"10.", "172.", "192.", "127."}))
	}
}

func TestTickSuppressesWithinWindow(t *testing.T) {
	for _, mode := range []config.RetentionMode{config.RetainWindow, config.RetainCycle} {
		source := endpoint.NewFixed([]string{"198.51.100.9:443"})
		engine, clock, path := newTestEngine(t, mode, source)
		ctx := context.Background()

		_, err := engine.Tick(ctx)
		require.Nil(t, err)

		clock.Advance(5 * time.Second)
		stats, err := engine.Tick(ctx)
		require.Nil(t, err)

		assert.Equal(t, 0, stats.Admitted, mode.String())
		assert.Len(t, readLines(t, path), 1, mode.String())
	}
}

func TestTickRelogsAfterWindow(t *testing.T) {
	for _, mode := range []config.RetentionMode{config.RetainWindow, config.RetainCycle} {
		source := endpoint.NewFixed(
			[]string{"198.51.100.9:443"},
			[]string{},
			[]string{},
			[]string{"198.51.100.9:443"},
		)
		engine, clock, path := newTestEngine(t, mode, source)
		ctx := context.Background()

		_, err := engine.Tick(ctx)
		require.Nil(t, err)
		for i := 0; i < 2; i++ {
			clock.Advance(10 * time.Second)
			_, err = engine.Tick(ctx)
			require.Nil(t, err)
		}

		clock.Advance(130 * time.Second)
		stats, err := engine.Tick(ctx)
		require.Nil(t, err)

		assert.Equal(t, 1, stats.Admitted, mode.String())
		assert.Equal(t, []string{"198.51.100.9", "198.51.100.9"}, addressesIn(t, path), mode.String())
	}
}

// Retention modes disagree when an address comes back within the window after
// skipping a cycle.
func TestTickRetentionModesDiverge(t *testing.T) {
	script := [][]string{
		{"198.51.100.9:443"},
		{},
		{"198.51.100.9:443"},
	}
	expected := map[config.RetentionMode]int{
		config.RetainWindow: 1,
		config.RetainCycle:  2,
	}

	for mode, lines := range expected {
		engine, clock, path := newTestEngine(t, mode, endpoint.NewFixed(script...))
		ctx := context.Background()
		for range script {
			_, err := engine.Tick(ctx)
			require.Nil(t, err)
			clock.Advance(10 * time.Second)
		}
		assert.Len(t, readLines(t, path), lines, mode.String())
	}
}

// An address that stays connected is logged every other cycle in cycle mode,
// because a suppressed candidate never enters the batch that gets retained.
func TestTickPersistentConnection(t *testing.T) {
	expected := map[config.RetentionMode]int{
		config.RetainWindow: 1,
		config.RetainCycle:  3,
	}

	for mode, lines := range expected {
		engine, clock, path := newTestEngine(t, mode, endpoint.NewFixed([]string{"198.51.100.9:443"}))
		ctx := context.Background()
		for i := 0; i < 6; i++ {
			_, err := engine.Tick(ctx)
			require.Nil(t, err)
			clock.Advance(10 * time.Second)
		}
		assert.Len(t, readLines(t, path), lines, mode.String())
	}
}

func TestTickSourceFailure(t *testing.T) {
	source := endpoint.NewFixed(nil, []string{"203.0.113.5:443"}).FailOn(0, errors.New("netstat: not found"))
	engine, clock, path := newTestEngine(t, config.RetainWindow, source)
	ctx := context.Background()

	_, err := engine.Tick(ctx)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	assert.False(t, util.Exists(path), "a failed cycle writes nothing")
	assert.Equal(t, Collecting, engine.Phase())

	clock.Advance(10 * time.Second)
	stats, err := engine.Tick(ctx)
	require.Nil(t, err)
	assert.Equal(t, 1, stats.Admitted)
	assert.Len(t, readLines(t, path), 1)
	assert.Equal(t, Idle, engine.Phase())
}

func TestTickPersistenceFailure(t *testing.T) {
	res, _ := resources.InitTestResources(t)
	engine := NewEngine(res, endpoint.NewFixed([]string{"203.0.113.5:443"}), &failingStore{path: "log-x.txt"}, nil)

	_, err := engine.Tick(context.Background())
	var persistErr *logstore.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.False(t, errors.Is(err, ErrSourceUnavailable))
	assert.Equal(t, Committing, engine.Phase())
}

func TestTickNamesRecords(t *testing.T) {
	res, _ := resources.InitTestResources(t)
	path := filepath.Join(res.Config.S.Storage.Directory, "log-named.txt")
	source := endpoint.NewFixed([]string{"203.0.113.5:443", "203.0.113.9:443", "198.51.100.9:22"})
	namer := mapNamer{
		"203.0.113.5": "cdn.example.com",
		"203.0.113.9": "cdn.example.com",
	}
	engine := NewEngine(res, source, logstore.NewFile(path, true), namer)
	engine.now = (&fakeClock{now: start}).Now

	stats, err := engine.Tick(context.Background())
	require.Nil(t, err)
	assert.Equal(t, 2, stats.Admitted, "second cdn address shares the resolved identity")

	assert.Equal(t, []string{
		"TIME: 2024-01-01 12:00:00.000000 IP: 203.0.113.5     DOMAIN: cdn.example.com",
		"TIME: 2024-01-01 12:00:00.000000 IP: 198.51.100.9    DOMAIN: 198.51.100.9",
	}, readLines(t, path))
}

func TestTickStrictFilter(t *testing.T) {
	res, _ := resources.InitTestResources(t)
	res.Config.S.Scan.NonPublicPrefixes = nil
	res.Config.S.Scan.StrictPublicFilter = true
	subnets, err := util.ParseSubnets([]string{"8.8.4.4"})
	require.Nil(t, err)
	res.Config.R.Scan.NeverInclude = subnets

	path := filepath.Join(res.Config.S.Storage.Directory, "log-strict.txt")
	source := endpoint.NewFixed([]string{
		"172.217.3.110:443",
		"172.16.0.4:443",
		"100.64.1.1:443",
		"8.8.4.4:53",
		"8.8.8.8:53",
	})
	engine := NewEngine(res, source, logstore.NewFile(path, false), nil)

	_, err = engine.Tick(context.Background())
	require.Nil(t, err)
	assert.Equal(t, []string{"172.217.3.110", "8.8.8.8"}, addressesIn(t, path))
}
