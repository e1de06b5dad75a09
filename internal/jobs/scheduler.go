// Package jobs runs the background cron tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/service"
)

// Scheduler owns the periodic autosave job. The autosave is the backstop for
// the fire-and-forget per-action writes: a full ledger flush repairs any
// durable write that failed.
type Scheduler struct {
	cron     *cron.Cron
	ledger   *service.Ledger
	interval time.Duration
}

// NewScheduler creates a Scheduler flushing the ledger every interval.
func NewScheduler(ledger *service.Ledger, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		ledger:   ledger,
		interval: interval,
	}
}

// Start registers and starts the background jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.ledger.Flush(ctx); err != nil {
			log.Error().Err(err).Msg("Autosave flush failed")
			return
		}
		log.Debug().Msg("Autosave flush completed")
	}); err != nil {
		return fmt.Errorf("failed to schedule autosave: %w", err)
	}

	s.cron.Start()
	log.Info().Dur("interval", s.interval).Msg("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Scheduler stopped")
}
