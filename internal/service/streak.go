package service

import (
	"context"
	"time"

	"attendance-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type StreakOutcome int

const (
	// StreakUnchanged: yesterday had no present record, counter stays put.
	// Absence never resets the counter mid-month; only the month-start
	// transition does.
	StreakUnchanged StreakOutcome = iota

	// StreakReset: the run date is the 1st, the month row was ensured at 0.
	// No increment happens on a reset run even when yesterday was present,
	// since yesterday belongs to the previous month.
	StreakReset

	// StreakAdvanced: exactly one present record yesterday, counter moved up
	// by one.
	StreakAdvanced

	// StreakAnomaly: the stored state is not something a normal run can
	// produce (missing month row on an increment, impossible presence count).
	// Logged, never acted on.
	StreakAnomaly
)

// StreakEngine maintains the per-member, per-month attendance streak counter.
type StreakEngine struct {
	streaks    *repository.StreakRepository
	attendance *repository.AttendanceRepository
	logger     zerolog.Logger
}

func NewStreakEngine(streaks *repository.StreakRepository, attendance *repository.AttendanceRepository, logger zerolog.Logger) *StreakEngine {
	return &StreakEngine{streaks: streaks, attendance: attendance, logger: logger}
}

// Advance runs one streak transition for a member. today, yesterday and
// monthStart must all come from the same fixed-timezone conversion; the
// orchestrator computes them once per run.
func (e *StreakEngine) Advance(ctx context.Context, memberID int64, today, yesterday, monthStart time.Time) (StreakOutcome, error) {
	log := e.logger.With().Int64("member_id", memberID).Logger()

	if today.Day() == 1 {
		if err := e.streaks.InsertIfAbsent(ctx, memberID, monthStart, 0); err != nil {
			return StreakUnchanged, err
		}
		log.Info().Str("month", monthStart.Format("2006-01")).Msg("streak month row ensured")
		return StreakReset, nil
	}

	present, err := e.attendance.CountPresent(ctx, memberID, yesterday)
	if err != nil {
		return StreakUnchanged, err
	}

	switch present {
	case 1:
		current, err := e.streaks.Get(ctx, memberID, monthStart)
		if err != nil {
			return StreakUnchanged, err
		}
		if current == nil {
			// The month-start run should have created this row. Report,
			// don't invent state.
			log.Warn().Str("month", monthStart.Format("2006-01")).Msg("no streak row for current month")
			return StreakAnomaly, nil
		}
		if err := e.streaks.Set(ctx, memberID, monthStart, *current+1); err != nil {
			return StreakUnchanged, err
		}
		log.Debug().Int("streak", *current+1).Msg("streak advanced")
		return StreakAdvanced, nil
	case 0:
		log.Debug().Msg("streak not incremented, no presence yesterday")
		return StreakUnchanged, nil
	default:
		log.Warn().Int("count", present).Msg("unexpected presence count for yesterday")
		return StreakAnomaly, nil
	}
}
