package logstore

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/activecm/connlog/pkg/connection"
	"github.com/activecm/connlog/util"
)

// File appends records to a single flat text log. The file is opened and
// closed on every Append so no handle outlives a cycle.
type File struct {
	path     string
	resolved bool
}

var _ Store = (*File)(nil)

// NewFile returns a store writing scan lines to path. If resolved is set the
// report layout with a DOMAIN column is written instead.
func NewFile(path string, resolved bool) *File {
	return &File{
		path:     path,
		resolved: resolved,
	}
}

// Path returns the log file location
func (f *File) Path() string { return f.path }

// Append writes the render of every record, in order. The file is created on
// the first call even if records is empty.
func (f *File) Append(records []connection.Record) error {
	if err := util.EnsureDir(filepath.Dir(f.path)); err != nil {
		return &PersistenceError{Path: f.path, Err: err}
	}

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &PersistenceError{Path: f.path, Err: err}
	}

	w := bufio.NewWriter(fh)
	for _, rec := range records {
		line := rec.Render()
		if f.resolved {
			line = rec.RenderResolved()
		}
		if _, err = w.WriteString(line); err != nil {
			break
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := fh.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &PersistenceError{Path: f.path, Err: err}
	}
	return nil
}
