// Package scheduler runs the scraping pipeline on a cron cadence. Each tick
// is a fresh run; a tick that fires while the previous run is still going is
// skipped rather than queued, since overlapping browser sessions trip the
// portals' bot detection.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one full scraping run.
type RunFunc func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	run     RunFunc
	running atomic.Bool
}

func New(run RunFunc) *Scheduler {
	return &Scheduler{cron: cron.New(), run: run}
}

// Start registers the cron spec and begins ticking. It returns immediately;
// runs happen on the cron goroutine until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if !s.running.CompareAndSwap(false, true) {
			log.Printf("previous run still in progress, skipping this tick")
			return
		}
		defer s.running.Store(false)

		if err := s.run(ctx); err != nil {
			log.Printf("scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// Stop halts the cron loop; the in-flight run, if any, finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
