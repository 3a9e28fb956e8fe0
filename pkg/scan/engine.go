package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/activecm/connlog/pkg/connection"
	"github.com/activecm/connlog/pkg/endpoint"
	"github.com/activecm/connlog/pkg/logstore"
	"github.com/activecm/connlog/resources"
	"github.com/activecm/connlog/util"
	log "github.com/sirupsen/logrus"
)

// ErrSourceUnavailable is wrapped by Tick when the endpoint lister fails
var ErrSourceUnavailable = errors.New("active endpoint source unavailable")

// Phase is the state of the engine within a cycle
type Phase int

const (
	// Idle is the state between cycles
	Idle Phase = iota
	// Collecting is the state while the batch is being filtered
	Collecting
	// Committing is the state while the batch is being persisted
	Committing
)

func (p Phase) String() string {
	switch p {
	case Collecting:
		return "collecting"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Namer attaches display names to addresses. It must return the address
// itself when no name is known.
type Namer interface {
	Name(ctx context.Context, address string) string
}

type (
	// Engine runs one scan cycle at a time against its own window
	Engine struct {
		source endpoint.Lister
		store  logstore.Store
		namer  Namer
		window *Window
		filter *filter
		log    *log.Logger
		now    func() time.Time
		phase  Phase
	}

	// TickStats summarizes one cycle
	TickStats struct {
		Seen     int
		Public   int
		Admitted int
		Retained int
	}
)

// NewEngine builds an engine from the scan settings in res. namer may be nil,
// in which case records carry only their raw address.
func NewEngine(res *resources.Resources, source endpoint.Lister, store logstore.Store, namer Namer) *Engine {
	scanCfg := res.Config.R.Scan
	return &Engine{
		source: source,
		store:  store,
		namer:  namer,
		window: NewWindow(scanCfg.Retention, scanCfg.Window),
		filter: newFilter(res.Config),
		log:    res.Log,
		now:    time.Now,
	}
}

// Phase returns the current cycle state. After a failed cycle it is the phase
// the failure happened in until the next cycle starts.
func (e *Engine) Phase() Phase { return e.phase }

// Tick runs a single cycle: roll the window over, collect new endpoints and
// append them to the store. A lister failure aborts the cycle before anything
// is written and is reported wrapped in ErrSourceUnavailable. A store failure
// is returned as is.
func (e *Engine) Tick(ctx context.Context) (TickStats, error) {
	var stats TickStats

	now := e.now()
	e.window.Rollover(now)
	e.phase = Collecting

	endpoints, err := e.source.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	stats.Seen = len(endpoints)

	for _, ep := range endpoints {
		address := util.StripPort(ep)
		if !e.filter.isPublic(address) {
			continue
		}
		stats.Public++

		candidate := connection.New(address, now)
		if e.namer != nil {
			if name := e.namer.Name(ctx, address); name != address {
				candidate = candidate.WithName(name)
			}
		}

		if e.window.Admit(candidate, now) {
			e.log.WithFields(log.Fields{
				"address": candidate.Address(),
				"name":    candidate.Name(),
			}).Debug("New connection")
		}
	}

	e.phase = Committing
	batch := e.window.Batch()
	stats.Admitted = len(batch)
	stats.Retained = len(e.window.Retained())

	if err := e.store.Append(batch); err != nil {
		return stats, err
	}
	e.phase = Idle
	return stats, nil
}
