package repository

import (
	"context"
	"database/sql"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	"github.com/rs/zerolog"
)

type MemberRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMemberRepository(sqlDB *sql.DB, logger zerolog.Logger) *MemberRepository {
	return &MemberRepository{db: sqlDB, logger: logger}
}

const memberColumns = `id, roll_no, name, email, hostel, year, discord_id, handle, platform, rating, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (domain.Member, error) {
	var m domain.Member
	var platform string
	err := row.Scan(
		&m.ID, &m.RollNo, &m.Name, &m.Email, &m.Hostel, &m.Year, &m.DiscordID,
		&m.Handle, &platform, &m.Rating, &m.CreatedAt, &m.UpdatedAt,
	)
	m.Platform = domain.Platform(platform)
	return m, err
}

// ListAll loads the full roster. The nightly job iterates every member with
// no filtering.
func (r *MemberRepository) ListAll(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id`)
	if err != nil {
		return nil, errs.Store(err, "list members")
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, errs.Store(err, "scan member")
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store(err, "list members")
	}
	return members, nil
}

func (r *MemberRepository) Get(ctx context.Context, id int64) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Store(err, "get member")
	}
	return &m, nil
}

func (r *MemberRepository) Create(ctx context.Context, m *domain.Member) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO members (roll_no, name, email, hostel, year, discord_id, handle, platform)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RollNo, m.Name, m.Email, m.Hostel, m.Year, m.DiscordID, m.Handle, string(m.Platform),
	)
	if err != nil {
		return 0, errs.Store(err, "create member")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Store(err, "create member id")
	}
	return id, nil
}

// UpdateRating writes the cached rating, the only member attribute the
// nightly job mutates.
func (r *MemberRepository) UpdateRating(ctx context.Context, id int64, rating int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE members SET rating = ?, updated_at = ? WHERE id = ?`,
		rating, time.Now().UTC(), id,
	)
	if err != nil {
		return errs.Store(err, "update member rating")
	}
	return nil
}

// Leaderboard ranks members with a linked handle by cached rating.
func (r *MemberRepository) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, handle, platform, rating
		FROM members
		WHERE handle != ''
		ORDER BY rating DESC, name ASC`,
	)
	if err != nil {
		return nil, errs.Store(err, "leaderboard")
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		var platform string
		if err := rows.Scan(&e.MemberID, &e.Name, &e.Handle, &platform, &e.Rating); err != nil {
			return nil, errs.Store(err, "scan leaderboard entry")
		}
		e.Platform = domain.Platform(platform)
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store(err, "leaderboard")
	}
	return entries, nil
}
