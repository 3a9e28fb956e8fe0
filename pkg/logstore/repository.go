package logstore

import "github.com/activecm/connlog/pkg/connection"

// Store persists the records admitted during one scan cycle
type Store interface {
	Append(records []connection.Record) error
	Path() string
}

// PersistenceError is returned when the scan log cannot be written
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return "writing scan log " + e.Path + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }
