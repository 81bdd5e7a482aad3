// Package worker runs the periodic inbox sweep when the process is started
// in worker mode.
package worker

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"smartmail_server/core/port/in"
)

// InboxPoller calls the sync service on a fixed interval. One sweep runs at
// a time; a sweep that overruns the interval simply delays the next tick.
type InboxPoller struct {
	sync     in.SyncService
	interval time.Duration
	batch    int
	log      zerolog.Logger
}

func NewInboxPoller(sync in.SyncService, interval time.Duration, batch int) *InboxPoller {
	log := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("component", "inbox-poller").
		Logger()
	return &InboxPoller{
		sync:     sync,
		interval: interval,
		batch:    batch,
		log:      log,
	}
}

// Run blocks until ctx is cancelled. The first sweep starts immediately so a
// fresh deploy does not sit idle for a full interval.
func (p *InboxPoller) Run(ctx context.Context) {
	p.log.Info().
		Dur("interval", p.interval).
		Int("batch", p.batch).
		Msg("inbox poller started")

	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("inbox poller stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *InboxPoller) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()

	processed, skipped, err := p.sync.SyncInbox(ctx, p.batch)
	if err != nil {
		p.log.Error().
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("inbox sweep failed")
		return
	}

	p.log.Info().
		Int("processed", processed).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("inbox sweep finished")
}
