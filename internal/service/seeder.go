package service

import (
	"context"
	"time"

	"attendance-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// Seeder creates the default absent attendance row for each member at the
// start of a day. Seeding is idempotent; running it twice for the same
// (member, date) leaves exactly one row.
type Seeder struct {
	attendance *repository.AttendanceRepository
	logger     zerolog.Logger
}

func NewSeeder(attendance *repository.AttendanceRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{attendance: attendance, logger: logger}
}

func (s *Seeder) Seed(ctx context.Context, memberID int64, date time.Time) (bool, error) {
	created, err := s.attendance.InsertIfAbsent(ctx, memberID, date)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("member_id", memberID).
			Str("date", date.Format("2006-01-02")).
			Msg("failed to seed attendance")
		return false, err
	}
	if !created {
		s.logger.Debug().
			Int64("member_id", memberID).
			Str("date", date.Format("2006-01-02")).
			Msg("attendance row already seeded")
	}
	return created, nil
}
