package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/constants"
	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RolloverJob is the nightly run: seed today's attendance rows, refresh
// external leaderboard stats, advance streaks. Members are processed with
// bounded concurrency and full fault isolation; only a roster listing
// failure aborts a run.
type RolloverJob struct {
	members   *repository.MemberRepository
	runs      *repository.RunRepository
	seeder    *Seeder
	refresher *Refresher
	streaks   *StreakEngine
	loc       *time.Location
	logger    zerolog.Logger

	now func() time.Time
}

func NewRolloverJob(
	members *repository.MemberRepository,
	runs *repository.RunRepository,
	seeder *Seeder,
	refresher *Refresher,
	streaks *StreakEngine,
	cfg *config.Config,
	logger zerolog.Logger,
) *RolloverJob {
	return &RolloverJob{
		members:   members,
		runs:      runs,
		seeder:    seeder,
		refresher: refresher,
		streaks:   streaks,
		loc:       cfg.Location,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *RolloverJob) Run(ctx context.Context) (*domain.RunSummary, error) {
	return j.RunAt(ctx, j.now())
}

// RunAt executes one rollover as of the given instant. Every date the run
// touches comes from a single conversion of that instant into the fixed
// timezone: mixing machine-local and fixed-zone arithmetic is the bug this
// normalization exists to prevent.
func (j *RolloverJob) RunAt(ctx context.Context, at time.Time) (*domain.RunSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RolloverRunTimeout)
	defer cancel()

	local := at.In(j.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC)

	started := time.Now()
	log := j.logger.With().Str("run_date", today.Format(domain.DateLayout)).Logger()
	log.Info().Msg("rollover run starting")

	roster, err := j.members.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roster, aborting run")
		return nil, fmt.Errorf("list roster: %w", err)
	}

	summary := &domain.RunSummary{
		RunDate:   today,
		Members:   len(roster),
		StartedAt: started,
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.RolloverWorkers)

	for _, member := range roster {
		g.Go(func() error {
			result := j.processMember(gctx, member, today, yesterday, monthStart)
			mu.Lock()
			summary.Seeded += result.seeded
			summary.SeedFailures += result.seedFailures
			summary.Refreshed += result.refreshed
			summary.RefreshSkipped += result.refreshSkipped
			summary.RefreshFailures += result.refreshFailures
			summary.StreaksAdvanced += result.streaksAdvanced
			summary.StreakFailures += result.streakFailures
			summary.Anomalies += result.anomalies
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	summary.FinishedAt = time.Now()
	if err := j.runs.Insert(ctx, summary); err != nil {
		log.Error().Err(err).Msg("failed to record run summary")
	}

	log.Info().
		Int("members", summary.Members).
		Int("seeded", summary.Seeded).
		Int("seed_failures", summary.SeedFailures).
		Int("refreshed", summary.Refreshed).
		Int("refresh_skipped", summary.RefreshSkipped).
		Int("refresh_failures", summary.RefreshFailures).
		Int("streaks_advanced", summary.StreaksAdvanced).
		Int("streak_failures", summary.StreakFailures).
		Int("anomalies", summary.Anomalies).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("rollover run finished")

	return summary, nil
}

type memberResult struct {
	seeded          int
	seedFailures    int
	refreshed       int
	refreshSkipped  int
	refreshFailures int
	streaksAdvanced int
	streakFailures  int
	anomalies       int
}

// processMember runs seed, refresh and streak in that order for one member.
// Each step's failure is absorbed here; a bad member never blocks a sibling.
// Seeding today's row happens before the streak step, which only ever reads
// yesterday's record, so the fresh absent row cannot influence the counter.
func (j *RolloverJob) processMember(ctx context.Context, member domain.Member, today, yesterday, monthStart time.Time) memberResult {
	var res memberResult
	log := j.logger.With().Int64("member_id", member.ID).Logger()

	created, err := j.seeder.Seed(ctx, member.ID, today)
	if err != nil {
		res.seedFailures++
	} else if created {
		res.seeded++
	}

	switch j.refresher.Refresh(ctx, member) {
	case RefreshDone:
		res.refreshed++
	case RefreshSkipped:
		res.refreshSkipped++
	case RefreshFailed:
		res.refreshFailures++
	}

	outcome, err := j.streaks.Advance(ctx, member.ID, today, yesterday, monthStart)
	if err != nil {
		log.Error().Err(err).Msg("streak advancement failed")
		res.streakFailures++
		return res
	}
	switch outcome {
	case StreakAdvanced:
		res.streaksAdvanced++
	case StreakAnomaly:
		res.anomalies++
	}

	return res
}
