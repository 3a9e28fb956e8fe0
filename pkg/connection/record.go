package connection

import (
	"fmt"
	"time"

	"github.com/activecm/connlog/util"
)

// Record is an immutable observation of one foreign address
type Record struct {
	address    string
	name       string
	observedAt time.Time
	display    string
}

// New creates a Record observed at now. The display text and the instant used
// for freshness checks both come from now so they cannot drift apart.
func New(address string, now time.Time) Record {
	return Record{
		address:    address,
		observedAt: now,
		display:    now.Format(util.DisplayTimeFormat),
	}
}

// WithName returns a copy of r carrying a resolved display name
func (r Record) WithName(name string) Record {
	r.name = name
	return r
}

// Address returns the raw observed address
func (r Record) Address() string { return r.address }

// Name returns the resolved display name, empty when unresolved
func (r Record) Name() string { return r.name }

// ObservedAt returns the instant the record was created
func (r Record) ObservedAt() time.Time { return r.observedAt }

// Timestamp returns the rendered observation time
func (r Record) Timestamp() string { return r.display }

// Matches reports whether other names this record, either by raw address or
// by resolved name
func (r Record) Matches(other string) bool {
	if r.address == other {
		return true
	}
	return r.name != "" && r.name == other
}

// SameAs reports whether both records describe the same endpoint
func (r Record) SameAs(other Record) bool {
	if r.Matches(other.address) {
		return true
	}
	return other.name != "" && r.Matches(other.name)
}

// IsFresh reports whether now falls within window of the observation
func (r Record) IsFresh(now time.Time, window time.Duration) bool {
	return now.Sub(r.observedAt) < window
}

// Render returns the scan log line for r
func (r Record) Render() string {
	return fmt.Sprintf("TIME: %s IP: %s\n", r.display, r.address)
}

// RenderResolved returns the report line for r. Unresolved records use the
// raw address as their domain.
func (r Record) RenderResolved() string {
	name := r.name
	if name == "" {
		name = r.address
	}
	return RenderReport(r.display, r.address, name)
}

// RenderReport formats a resolved report line
func RenderReport(timestamp, address, domain string) string {
	return fmt.Sprintf("TIME: %s IP: %-15s DOMAIN: %s\n", timestamp, address, domain)
}
