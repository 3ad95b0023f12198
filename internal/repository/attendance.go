package repository

import (
	"context"
	"database/sql"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	"github.com/rs/zerolog"
)

type AttendanceRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAttendanceRepository(sqlDB *sql.DB, logger zerolog.Logger) *AttendanceRepository {
	return &AttendanceRepository{db: sqlDB, logger: logger}
}

// InsertIfAbsent seeds the default absent row for (member, date). The insert
// is idempotent: a conflict on the composite key is a silent no-op, and the
// returned bool reports whether a row was actually created.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, memberID int64, date time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (member_id, date, is_present, time_in, time_out)
		VALUES (?, ?, 0, '00:00:00', '00:00:00')
		ON CONFLICT (member_id, date) DO NOTHING`,
		memberID, date.Format(domain.DateLayout),
	)
	if err != nil {
		return false, errs.Store(err, "seed attendance")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.Store(err, "seed attendance rows affected")
	}
	return n == 1, nil
}

// CountPresent returns how many present rows exist for (member, date).
// The composite key makes any value other than 0 or 1 an anomaly, which the
// streak engine reports rather than acting on.
func (r *AttendanceRepository) CountPresent(ctx context.Context, memberID int64, date time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance
		WHERE member_id = ? AND date = ? AND is_present = 1`,
		memberID, date.Format(domain.DateLayout),
	).Scan(&count)
	if err != nil {
		return 0, errs.Store(err, "count present")
	}
	return count, nil
}

// SetPresence writes the requested presence value onto an existing row.
// time_in is set only when it still holds the seeded sentinel; time_out
// always advances.
func (r *AttendanceRepository) SetPresence(ctx context.Context, memberID int64, date time.Time, present bool, at time.Time) (bool, error) {
	clock := at.Format("15:04:05")
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance
		SET time_in = CASE WHEN time_in = '00:00:00' THEN ? ELSE time_in END,
		    time_out = ?,
		    is_present = ?,
		    updated_at = ?
		WHERE member_id = ? AND date = ?`,
		clock, clock, present, time.Now().UTC(), memberID, date.Format(domain.DateLayout),
	)
	if err != nil {
		return false, errs.Store(err, "mark attendance")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.Store(err, "mark attendance rows affected")
	}
	return n == 1, nil
}

func (r *AttendanceRepository) ListByMember(ctx context.Context, memberID int64) ([]domain.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT member_id, date, is_present, time_in, time_out, created_at, updated_at
		FROM attendance
		WHERE member_id = ?
		ORDER BY date DESC`,
		memberID,
	)
	if err != nil {
		return nil, errs.Store(err, "list attendance")
	}
	defer rows.Close()

	var records []domain.Attendance
	for rows.Next() {
		var a domain.Attendance
		var date string
		if err := rows.Scan(&a.MemberID, &date, &a.IsPresent, &a.TimeIn, &a.TimeOut, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, errs.Store(err, "scan attendance")
		}
		if a.Date, err = time.Parse(domain.DateLayout, date); err != nil {
			return nil, errs.Store(err, "parse attendance date")
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store(err, "list attendance")
	}
	return records, nil
}

// DailyCounts returns the number of present members per day over [start, end].
func (r *AttendanceRepository) DailyCounts(ctx context.Context, start, end time.Time) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, COUNT(*) FROM attendance
		WHERE is_present = 1 AND date >= ? AND date <= ?
		GROUP BY date
		ORDER BY date`,
		start.Format(domain.DateLayout), end.Format(domain.DateLayout),
	)
	if err != nil {
		return nil, errs.Store(err, "daily counts")
	}
	defer rows.Close()

	var counts []domain.DailyCount
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, errs.Store(err, "scan daily count")
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store(err, "daily counts")
	}
	return counts, nil
}
