package service

import (
	"context"
	"sync"
	"time"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PlatformClient is what the refresher expects from an external leaderboard
// platform: stats on success, nil stats when the platform has no data for
// the handle, an error on network or parse failure.
type PlatformClient interface {
	FetchStats(ctx context.Context, handle string) (*domain.PlatformStats, error)
}

type RefreshOutcome int

const (
	RefreshSkipped RefreshOutcome = iota
	RefreshDone
	RefreshFailed
)

// Refresher pulls external leaderboard stats for one member at a time. A
// member may have rows on both platforms; those lookups run in parallel and
// fail independently.
type Refresher struct {
	codeforces PlatformClient
	leetcode   PlatformClient
	stats      *repository.StatsRepository
	members    *repository.MemberRepository
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewRefresher(
	codeforces *CodeforcesSource,
	leetcode *LeetCodeSource,
	stats *repository.StatsRepository,
	members *repository.MemberRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *Refresher {
	return &Refresher{
		codeforces: codeforces.Client,
		leetcode:   leetcode.Client,
		stats:      stats,
		members:    members,
		timeout:    cfg.LookupTimeout,
		logger:     logger,
	}
}

// CodeforcesSource and LeetCodeSource disambiguate the two PlatformClient
// dependencies for the fx container.
type CodeforcesSource struct{ Client PlatformClient }
type LeetCodeSource struct{ Client PlatformClient }

// Refresh updates a member's platform stats rows and cached rating. Failures
// are logged and reported in the outcome; they never abort the batch.
func (r *Refresher) Refresh(ctx context.Context, member domain.Member) RefreshOutcome {
	log := r.logger.With().Int64("member_id", member.ID).Logger()

	cfHandle, lcUser, err := r.resolveHandles(ctx, member)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve platform handles")
		return RefreshFailed
	}
	if cfHandle == "" && lcUser == "" {
		log.Debug().Msg("member has no linked platform, skipping refresh")
		return RefreshSkipped
	}

	var (
		mu      sync.Mutex
		updated bool
		failed  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfHandle != "" {
		g.Go(func() error {
			ok := r.refreshCodeforces(gctx, member, cfHandle)
			mu.Lock()
			updated = updated || ok == RefreshDone
			failed = failed || ok == RefreshFailed
			mu.Unlock()
			return nil
		})
	}
	if lcUser != "" {
		g.Go(func() error {
			ok := r.refreshLeetCode(gctx, member, lcUser)
			mu.Lock()
			updated = updated || ok == RefreshDone
			failed = failed || ok == RefreshFailed
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	switch {
	case failed:
		return RefreshFailed
	case updated:
		return RefreshDone
	default:
		return RefreshSkipped
	}
}

// resolveHandles merges the member's platform link with any existing stats
// rows, so a member tracked on both platforms keeps both refreshed.
func (r *Refresher) resolveHandles(ctx context.Context, member domain.Member) (cfHandle, lcUser string, err error) {
	if cf, err := r.stats.GetCodeforces(ctx, member.ID); err != nil {
		return "", "", err
	} else if cf != nil {
		cfHandle = cf.Handle
	}
	if lc, err := r.stats.GetLeetCode(ctx, member.ID); err != nil {
		return "", "", err
	} else if lc != nil {
		lcUser = lc.Username
	}

	switch member.Platform {
	case domain.PlatformCodeforces:
		if member.Handle != "" {
			cfHandle = member.Handle
		}
	case domain.PlatformLeetCode:
		if member.Handle != "" {
			lcUser = member.Handle
		}
	}
	return cfHandle, lcUser, nil
}

func (r *Refresher) refreshCodeforces(ctx context.Context, member domain.Member, handle string) RefreshOutcome {
	log := r.logger.With().Int64("member_id", member.ID).Str("platform", "codeforces").Str("handle", handle).Logger()

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stats, err := r.codeforces.FetchStats(lookupCtx, handle)
	if err != nil {
		log.Warn().Err(err).Msg("lookup failed, skipping member")
		return RefreshFailed
	}
	if stats == nil {
		log.Info().Msg("platform has no data for handle")
		return RefreshSkipped
	}

	if err := r.stats.UpsertCodeforces(ctx, &domain.CodeforcesStats{
		MemberID:       member.ID,
		Handle:         handle,
		Rating:         stats.Rating,
		MaxRating:      stats.MaxRating,
		ProblemsSolved: stats.ProblemsSolved,
		Contests:       stats.Contests,
	}); err != nil {
		log.Error().Err(err).Msg("failed to upsert codeforces stats")
		return RefreshFailed
	}

	if member.Platform == domain.PlatformCodeforces {
		if err := r.members.UpdateRating(ctx, member.ID, stats.Rating); err != nil {
			log.Error().Err(err).Msg("failed to update cached rating")
			return RefreshFailed
		}
	}

	log.Debug().Int("rating", stats.Rating).Msg("codeforces stats refreshed")
	return RefreshDone
}

func (r *Refresher) refreshLeetCode(ctx context.Context, member domain.Member, username string) RefreshOutcome {
	log := r.logger.With().Int64("member_id", member.ID).Str("platform", "leetcode").Str("handle", username).Logger()

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stats, err := r.leetcode.FetchStats(lookupCtx, username)
	if err != nil {
		log.Warn().Err(err).Msg("lookup failed, skipping member")
		return RefreshFailed
	}
	if stats == nil {
		log.Info().Msg("platform has no data for handle")
		return RefreshSkipped
	}

	if err := r.stats.UpsertLeetCode(ctx, &domain.LeetCodeStats{
		MemberID:       member.ID,
		Username:       username,
		Ranking:        stats.Ranking,
		ProblemsSolved: stats.ProblemsSolved,
		EasySolved:     stats.EasySolved,
		MediumSolved:   stats.MediumSolved,
		HardSolved:     stats.HardSolved,
	}); err != nil {
		log.Error().Err(err).Msg("failed to upsert leetcode stats")
		return RefreshFailed
	}

	if member.Platform == domain.PlatformLeetCode {
		if err := r.members.UpdateRating(ctx, member.ID, stats.Ranking); err != nil {
			log.Error().Err(err).Msg("failed to update cached rating")
			return RefreshFailed
		}
	}

	log.Debug().Int("ranking", stats.Ranking).Msg("leetcode stats refreshed")
	return RefreshDone
}
