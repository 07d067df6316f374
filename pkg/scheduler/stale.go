package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// sweepOrphans periodically cancels task execution units that have
// outrun their per-task timeout despite context cancellation never taking
// (e.g. an Executor that blocks on a call ignoring ctx). Grounded on the
// teacher's pkg/queue/orphan.go detector, which runs on its own ticker
// independent of the main poll loop and force-fails any session whose
// last-heartbeat timestamp is older than the configured threshold.
func (s *Scheduler) sweepOrphans(ctx context.Context) {
	ticker := time.NewTicker(s.opts.OrphanCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cancelStale()
		}
	}
}

func (s *Scheduler) cancelStale() {
	if s.opts.PerTaskTimeout <= 0 {
		return
	}
	deadline := s.opts.PerTaskTimeout + s.opts.GracePeriod
	now := time.Now()

	s.mu.Lock()
	var stale []string
	for id, startedAt := range s.started {
		if now.Sub(startedAt) > deadline {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.mu.Lock()
		cancel, ok := s.cancels[id]
		s.mu.Unlock()
		if ok {
			slog.Warn("scheduler: cancelling orphaned task past its deadline", "task", id)
			cancel()
		}
	}
}
