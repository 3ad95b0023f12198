package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// RunRepository records one row per nightly rollover run.
type RunRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRunRepository(sqlDB *sql.DB, logger zerolog.Logger) *RunRepository {
	return &RunRepository{db: sqlDB, logger: logger}
}

func (r *RunRepository) Insert(ctx context.Context, s *domain.RunSummary) error {
	id := s.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		s.ID = id
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO job_runs (
			id, run_date, members, seeded, seed_failures,
			refreshed, refresh_skipped, refresh_failures,
			streaks_advanced, streak_failures, anomalies,
			started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.RunDate.Format(domain.DateLayout), s.Members, s.Seeded, s.SeedFailures,
		s.Refreshed, s.RefreshSkipped, s.RefreshFailures,
		s.StreaksAdvanced, s.StreakFailures, s.Anomalies,
		s.StartedAt.UTC(), s.FinishedAt.UTC(),
	)
	if err != nil {
		return errs.Store(err, "insert job run")
	}
	return nil
}

func (r *RunRepository) Latest(ctx context.Context) (*domain.RunSummary, error) {
	var s domain.RunSummary
	var runDate string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, run_date, members, seeded, seed_failures,
		       refreshed, refresh_skipped, refresh_failures,
		       streaks_advanced, streak_failures, anomalies,
		       started_at, finished_at
		FROM job_runs
		ORDER BY started_at DESC
		LIMIT 1`,
	).Scan(
		&s.ID, &runDate, &s.Members, &s.Seeded, &s.SeedFailures,
		&s.Refreshed, &s.RefreshSkipped, &s.RefreshFailures,
		&s.StreaksAdvanced, &s.StreakFailures, &s.Anomalies,
		&s.StartedAt, &s.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Store(err, "latest job run")
	}
	if s.RunDate, err = time.Parse(domain.DateLayout, runDate); err != nil {
		return nil, errs.Store(err, "parse job run date")
	}
	return &s, nil
}
