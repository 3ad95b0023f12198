package scheduler

import (
	"context"
	"time"

	"attendance-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// Job is what the scheduler fires once per local midnight.
type Job interface {
	Run(ctx context.Context) (*domain.RunSummary, error)
}

// Scheduler sleeps until the next midnight in the fixed timezone, runs the
// job once, and repeats. Each wait is recomputed from the wall clock, so no
// drift accumulates, and a failed run never stops the following day's.
type Scheduler struct {
	job    Job
	loc    *time.Location
	logger zerolog.Logger
}

func New(job Job, loc *time.Location, logger zerolog.Logger) *Scheduler {
	return &Scheduler{job: job, loc: loc, logger: logger}
}

// UntilNextMidnight computes the wait from now to the next 00:00:00 in loc.
// When now is exactly midnight the result is a full day: a firing must never
// repeat for the same date.
func UntilNextMidnight(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return next.Sub(now)
}

// Start drives the daily loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		wait := UntilNextMidnight(time.Now(), s.loc)
		s.logger.Info().
			Dur("wait", wait).
			Time("fire_at", time.Now().Add(wait)).
			Msg("sleeping until next midnight")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-timer.C:
		}

		if _, err := s.job.Run(ctx); err != nil {
			// One bad day must not stop future days.
			s.logger.Error().Err(err).Msg("nightly job failed, continuing to next cycle")
		}
	}
}
