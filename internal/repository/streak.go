package repository

import (
	"context"
	"database/sql"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	"github.com/rs/zerolog"
)

type StreakRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStreakRepository(sqlDB *sql.DB, logger zerolog.Logger) *StreakRepository {
	return &StreakRepository{db: sqlDB, logger: logger}
}

// Get returns the streak counter for (member, month), or nil when no row
// exists for that month yet.
func (r *StreakRepository) Get(ctx context.Context, memberID int64, month time.Time) (*int, error) {
	var streak int
	err := r.db.QueryRowContext(ctx, `
		SELECT streak FROM attendance_streaks
		WHERE member_id = ? AND month = ?`,
		memberID, month.Format(domain.DateLayout),
	).Scan(&streak)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Store(err, "get streak")
	}
	return &streak, nil
}

// InsertIfAbsent creates the month row with the given counter. An existing
// row is left untouched so a concurrently created one is never clobbered.
func (r *StreakRepository) InsertIfAbsent(ctx context.Context, memberID int64, month time.Time, streak int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_streaks (member_id, month, streak)
		VALUES (?, ?, ?)
		ON CONFLICT (member_id, month) DO NOTHING`,
		memberID, month.Format(domain.DateLayout), streak,
	)
	if err != nil {
		return errs.Store(err, "insert streak")
	}
	return nil
}

func (r *StreakRepository) Set(ctx context.Context, memberID int64, month time.Time, streak int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_streaks SET streak = ?
		WHERE member_id = ? AND month = ?`,
		streak, memberID, month.Format(domain.DateLayout),
	)
	if err != nil {
		return errs.Store(err, "set streak")
	}
	return nil
}
