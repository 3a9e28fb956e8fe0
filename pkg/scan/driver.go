package scan

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Driver re-runs an Engine on a fixed interval until its context ends or the
// engine fails to persist
type Driver struct {
	engine   *Engine
	interval time.Duration
	log      *log.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewDriver returns a driver ticking engine every interval
func NewDriver(engine *Engine, interval time.Duration, logger *log.Logger) *Driver {
	return &Driver{
		engine:   engine,
		interval: interval,
		log:      logger,
		sleep:    sleepContext,
	}
}

// Run waits one interval, then ticks forever. Each tick is scheduled one
// interval after the start of the previous one; a slow tick pushes the next
// one back rather than overlapping it. Lister failures are logged and the
// loop continues. Run returns ctx.Err() when cancelled and the store error
// when a write fails.
func (d *Driver) Run(ctx context.Context) error {
	next := d.engine.now().Add(d.interval)

	for {
		if err := d.sleep(ctx, next.Sub(d.engine.now())); err != nil {
			return err
		}

		start := d.engine.now()
		stats, err := d.engine.Tick(ctx)
		next = start.Add(d.interval)

		if err != nil {
			if errors.Is(err, ErrSourceUnavailable) {
				d.log.WithFields(log.Fields{
					"error": err.Error(),
					"phase": d.engine.Phase().String(),
				}).Warn("Skipping scan cycle")
				continue
			}
			d.log.WithFields(log.Fields{
				"error": err.Error(),
				"phase": d.engine.Phase().String(),
			}).Error("Failed to persist scan cycle")
			return err
		}

		d.log.WithFields(log.Fields{
			"seen":     stats.Seen,
			"public":   stats.Public,
			"new":      stats.Admitted,
			"retained": stats.Retained,
			"duration": d.engine.now().Sub(start).String(),
		}).Info("Scan cycle complete")
	}
}

// sleepContext blocks for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
