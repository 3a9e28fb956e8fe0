package scan

import (
	"time"

	"github.com/activecm/connlog/config"
	"github.com/activecm/connlog/pkg/connection"
)

// Window tracks the batch being collected this cycle and the records retained
// from earlier cycles that may still suppress re-logging
type Window struct {
	retention config.RetentionMode
	width     time.Duration
	batch     []connection.Record
	retained  []connection.Record
}

// NewWindow returns an empty window. width is the freshness threshold.
func NewWindow(retention config.RetentionMode, width time.Duration) *Window {
	return &Window{
		retention: retention,
		width:     width,
	}
}

// Rollover starts a new cycle. In RetainWindow mode the previous batch joins
// the retained set and every record no longer fresh at now is dropped.
// In RetainCycle mode the retained set becomes exactly the previous batch.
func (w *Window) Rollover(now time.Time) {
	switch w.retention {
	case config.RetainCycle:
		w.retained = w.batch
	default:
		carried := append(w.retained, w.batch...)
		kept := make([]connection.Record, 0, len(carried))
		for _, rec := range carried {
			if rec.IsFresh(now, w.width) {
				kept = append(kept, rec)
			}
		}
		w.retained = kept
	}
	w.batch = nil
}

// Admit adds candidate to the batch unless the batch already holds the same
// endpoint or a fresh retained record does
func (w *Window) Admit(candidate connection.Record, now time.Time) bool {
	for _, rec := range w.batch {
		if rec.SameAs(candidate) {
			return false
		}
	}

	for _, rec := range w.retained {
		if rec.SameAs(candidate) && rec.IsFresh(now, w.width) {
			return false
		}
	}

	w.batch = append(w.batch, candidate)
	return true
}

// Batch returns the records admitted this cycle in discovery order
func (w *Window) Batch() []connection.Record {
	return append([]connection.Record(nil), w.batch...)
}

// Retained returns the records carried over from earlier cycles
func (w *Window) Retained() []connection.Record {
	return append([]connection.Record(nil), w.retained...)
}
