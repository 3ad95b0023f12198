package repository

import (
	"context"
	"database/sql"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	"github.com/rs/zerolog"
)

// StatsRepository holds the per-platform leaderboard stats rows. Absence of a
// row means the member has not opted into that platform.
type StatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{db: sqlDB, logger: logger}
}

func (r *StatsRepository) UpsertCodeforces(ctx context.Context, s *domain.CodeforcesStats) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO codeforces_stats (member_id, handle, rating, max_rating, problems_solved, contests, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (member_id) DO UPDATE SET
			handle = excluded.handle,
			rating = excluded.rating,
			max_rating = excluded.max_rating,
			problems_solved = excluded.problems_solved,
			contests = excluded.contests,
			updated_at = excluded.updated_at`,
		s.MemberID, s.Handle, s.Rating, s.MaxRating, s.ProblemsSolved, s.Contests, time.Now().UTC(),
	)
	if err != nil {
		return errs.Store(err, "upsert codeforces stats")
	}
	return nil
}

func (r *StatsRepository) UpsertLeetCode(ctx context.Context, s *domain.LeetCodeStats) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leetcode_stats (member_id, username, ranking, problems_solved, easy_solved, medium_solved, hard_solved, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (member_id) DO UPDATE SET
			username = excluded.username,
			ranking = excluded.ranking,
			problems_solved = excluded.problems_solved,
			easy_solved = excluded.easy_solved,
			medium_solved = excluded.medium_solved,
			hard_solved = excluded.hard_solved,
			updated_at = excluded.updated_at`,
		s.MemberID, s.Username, s.Ranking, s.ProblemsSolved, s.EasySolved, s.MediumSolved, s.HardSolved, time.Now().UTC(),
	)
	if err != nil {
		return errs.Store(err, "upsert leetcode stats")
	}
	return nil
}

func (r *StatsRepository) GetCodeforces(ctx context.Context, memberID int64) (*domain.CodeforcesStats, error) {
	var s domain.CodeforcesStats
	err := r.db.QueryRowContext(ctx, `
		SELECT member_id, handle, rating, max_rating, problems_solved, contests, updated_at
		FROM codeforces_stats WHERE member_id = ?`,
		memberID,
	).Scan(&s.MemberID, &s.Handle, &s.Rating, &s.MaxRating, &s.ProblemsSolved, &s.Contests, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Store(err, "get codeforces stats")
	}
	return &s, nil
}

func (r *StatsRepository) GetLeetCode(ctx context.Context, memberID int64) (*domain.LeetCodeStats, error) {
	var s domain.LeetCodeStats
	err := r.db.QueryRowContext(ctx, `
		SELECT member_id, username, ranking, problems_solved, easy_solved, medium_solved, hard_solved, updated_at
		FROM leetcode_stats WHERE member_id = ?`,
		memberID,
	).Scan(&s.MemberID, &s.Username, &s.Ranking, &s.ProblemsSolved, &s.EasySolved, &s.MediumSolved, &s.HardSolved, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Store(err, "get leetcode stats")
	}
	return &s, nil
}
