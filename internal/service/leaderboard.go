package service

import (
	"context"

	"attendance-tracker/internal/constants"
	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// LeaderboardService exposes the rating-ranked member listing.
type LeaderboardService struct {
	members *repository.MemberRepository
	logger  zerolog.Logger
}

func NewLeaderboardService(members *repository.MemberRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{members: members, logger: logger}
}

func (s *LeaderboardService) Ranked(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	entries, err := s.members.Leaderboard(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load leaderboard")
		return nil, err
	}
	return entries, nil
}
