package resolver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/activecm/connlog/pkg/connection"
	"github.com/activecm/connlog/util"
	log "github.com/sirupsen/logrus"
)

type (
	// Resolver enriches scan logs with organization names
	Resolver struct {
		lookup Lookup
		log    *log.Logger
		cache  util.NameCache
		// OnFile is called once a scan log is loaded, if set
		OnFile func(path string, entries int)
		// OnResolved is called after each entry is resolved, if set
		OnResolved func()
	}
)

// New returns a resolver using lookup. Names are cached for the life of the
// resolver so repeated addresses are only looked up once.
func New(lookup Lookup, logger *log.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		log:    logger,
		cache:  util.NewNameCache(),
	}
}

// Load parses every non-empty line of the scan log at path. Lines already in
// the report layout, as written when scan time names are on, keep only their
// address and are resolved again.
func Load(path string) ([]connection.Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var entries []connection.Entry
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := connection.ParseLine(line)
		if err != nil {
			var parseErr *connection.ParseError
			if errors.As(err, &parseErr) {
				parseErr.Line = lineNum
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Resolve returns entry with its Domain set from the lookup
func (r *Resolver) Resolve(ctx context.Context, entry connection.Entry) (connection.Entry, error) {
	if name, ok := r.cache.Lookup(entry.Address); ok {
		entry.Domain = name
		return entry, nil
	}

	name, err := r.lookup.Lookup(ctx, entry.Address)
	if err != nil {
		return entry, err
	}
	r.cache.Store(entry.Address, name)

	entry.Domain = name
	return entry, nil
}

// ResolveAll resolves entries in order. The first failure aborts the batch.
func (r *Resolver) ResolveAll(ctx context.Context, entries []connection.Entry) ([]connection.Entry, error) {
	resolved := make([]connection.Entry, 0, len(entries))
	for _, entry := range entries {
		out, err := r.Resolve(ctx, entry)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, out)
		if r.OnResolved != nil {
			r.OnResolved()
		}
	}
	return resolved, nil
}

// Store overwrites path with one report line per entry, in order
func Store(entries []connection.Entry, path string) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(fh)
	for _, entry := range entries {
		if _, err = w.WriteString(entry.RenderResolved()); err != nil {
			break
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := fh.Close(); err == nil {
		err = closeErr
	}
	return err
}

// ResolveFile loads in, resolves every entry and writes the report to out.
// Nothing is written unless every entry resolves.
func (r *Resolver) ResolveFile(ctx context.Context, in, out string) (int, error) {
	entries, err := Load(in)
	if err != nil {
		return 0, err
	}

	r.log.WithFields(log.Fields{
		"file":    in,
		"entries": len(entries),
	}).Info("Resolving scan log")
	if r.OnFile != nil {
		r.OnFile(in, len(entries))
	}

	resolved, err := r.ResolveAll(ctx, entries)
	if err != nil {
		return 0, err
	}

	if err := Store(resolved, out); err != nil {
		return 0, fmt.Errorf("writing report %s: %w", out, err)
	}

	r.log.WithFields(log.Fields{
		"file":    out,
		"lookups": r.cache.Len(),
	}).Info("Wrote resolved report")
	return len(resolved), nil
}

// ResolveDir resolves every scan log in dir accepted by match into a report of
// the same name under reportDir. The first failing file stops the run; reports
// already written for earlier files are kept.
func (r *Resolver) ResolveDir(ctx context.Context, dir, reportDir string, match func(name string) bool) ([]string, error) {
	files, err := LogFiles(dir, match)
	if err != nil {
		return nil, err
	}

	var reports []string
	for _, in := range files {
		out := ReportPath(in, reportDir)
		if _, err := r.ResolveFile(ctx, in, out); err != nil {
			return reports, err
		}
		reports = append(reports, out)
	}
	return reports, nil
}

// LogFiles lists the scan logs in dir accepted by match, sorted by name
func LogFiles(dir string, match func(name string) bool) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !match(dirEntry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, dirEntry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ReportPath returns where the report for the scan log at in is written
func ReportPath(in, reportDir string) string {
	return filepath.Join(reportDir, filepath.Base(in))
}
