package usecase

import (
	"context"
	"time"

	"DigestEngine/internal/ports"
)

// Scheduler wires the cron-like driver with the engine's daily batch.
type Scheduler struct {
	driver ports.Scheduler
	engine *Engine
}

// NewScheduler returns a helper to start/stop the recurring recompute.
func NewScheduler(driver ports.Scheduler, engine *Engine) *Scheduler {
	return &Scheduler{driver: driver, engine: engine}
}

// Start registers the daily batch with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.engine == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.engine.ProcessDay(ctx, trigger); err != nil {
			s.engine.warn("scheduled batch failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
