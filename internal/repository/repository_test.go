package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"attendance-tracker/internal/database"
	"attendance-tracker/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createMember(t *testing.T, repo *MemberRepository, rollNo string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.Member{
		RollNo: rollNo,
		Name:   "Member " + rollNo,
	})
	if err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	return id
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceInsertIfAbsentIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	attendance := NewAttendanceRepository(db, zerolog.Nop())
	ctx := context.Background()

	id := createMember(t, members, "AM.EN.001")
	day := date(2024, time.February, 15)

	created, err := attendance.InsertIfAbsent(ctx, id, day)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if !created {
		t.Fatal("first insert should create a row")
	}

	created, err = attendance.InsertIfAbsent(ctx, id, day)
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if created {
		t.Fatal("second insert must be a no-op")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE member_id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one attendance row, got %d", count)
	}
}

func TestAttendanceSetPresence(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	attendance := NewAttendanceRepository(db, zerolog.Nop())
	ctx := context.Background()

	id := createMember(t, members, "AM.EN.002")
	day := date(2024, time.February, 15)

	if _, err := attendance.InsertIfAbsent(ctx, id, day); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	firstMark := time.Date(2024, time.February, 15, 9, 30, 0, 0, time.UTC)
	marked, err := attendance.SetPresence(ctx, id, day, true, firstMark)
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if !marked {
		t.Fatal("expected mark to hit the seeded row")
	}

	// second mark later the same day advances time_out but keeps time_in
	secondMark := time.Date(2024, time.February, 15, 17, 45, 0, 0, time.UTC)
	if _, err := attendance.SetPresence(ctx, id, day, true, secondMark); err != nil {
		t.Fatalf("second mark failed: %v", err)
	}

	records, err := attendance.ListByMember(ctx, id)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	got := records[0]
	if !got.IsPresent {
		t.Error("expected record to be present")
	}
	if got.TimeIn != "09:30:00" {
		t.Errorf("time_in = %q, want 09:30:00", got.TimeIn)
	}
	if got.TimeOut != "17:45:00" {
		t.Errorf("time_out = %q, want 17:45:00", got.TimeOut)
	}

	count, err := attendance.CountPresent(ctx, id, day)
	if err != nil {
		t.Fatalf("count present failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count present = %d, want 1", count)
	}
}

func TestAttendanceSetPresenceWithoutRow(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	attendance := NewAttendanceRepository(db, zerolog.Nop())

	id := createMember(t, members, "AM.EN.003")

	marked, err := attendance.SetPresence(context.Background(), id, date(2024, time.February, 15), true, time.Now())
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if marked {
		t.Error("mark must not invent a row")
	}
}

func TestAttendanceSetPresenceFalseClearsRow(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	attendance := NewAttendanceRepository(db, zerolog.Nop())
	ctx := context.Background()

	id := createMember(t, members, "AM.EN.006")
	day := date(2024, time.February, 15)

	if _, err := attendance.InsertIfAbsent(ctx, id, day); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := attendance.SetPresence(ctx, id, day, true, time.Date(2024, time.February, 15, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	// a later correction with present=false must undo the mark
	marked, err := attendance.SetPresence(ctx, id, day, false, time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !marked {
		t.Fatal("expected clear to hit the existing row")
	}

	records, err := attendance.ListByMember(ctx, id)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].IsPresent {
		t.Error("expected record to be absent after the correction")
	}

	count, err := attendance.CountPresent(ctx, id, day)
	if err != nil {
		t.Fatalf("count present failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count present = %d, want 0", count)
	}
}

func TestStreakInsertIfAbsentDoesNotClobber(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	streaks := NewStreakRepository(db, zerolog.Nop())
	ctx := context.Background()

	id := createMember(t, members, "AM.EN.004")
	month := date(2024, time.February, 1)

	if err := streaks.InsertIfAbsent(ctx, id, month, 5); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// a concurrently created row must survive a second conditional insert
	if err := streaks.InsertIfAbsent(ctx, id, month, 0); err != nil {
		t.Fatalf("second insert failed: %v", err)
	}

	got, err := streaks.Get(ctx, id, month)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || *got != 5 {
		t.Fatalf("streak = %v, want 5", got)
	}
}

func TestStreakGetMissingMonth(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	streaks := NewStreakRepository(db, zerolog.Nop())

	id := createMember(t, members, "AM.EN.005")

	got, err := streaks.Get(context.Background(), id, date(2024, time.March, 1))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing month, got %d", *got)
	}
}

func TestMemberGetMissing(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())

	got, err := members.Get(context.Background(), 404)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing member, got %+v", got)
	}
}

func TestLeaderboardRanksByRating(t *testing.T) {
	db := setupTestDB(t)
	members := NewMemberRepository(db, zerolog.Nop())
	ctx := context.Background()

	for _, m := range []struct {
		roll   string
		handle string
		rating int
	}{
		{"R1", "alpha", 1500},
		{"R2", "beta", 1900},
		{"R3", "gamma", 1200},
	} {
		id, err := members.Create(ctx, &domain.Member{
			RollNo:   m.roll,
			Name:     m.roll,
			Handle:   m.handle,
			Platform: domain.PlatformCodeforces,
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := members.UpdateRating(ctx, id, m.rating); err != nil {
			t.Fatalf("update rating failed: %v", err)
		}
	}
	// unlinked member stays off the board
	if _, err := members.Create(ctx, &domain.Member{RollNo: "R4", Name: "R4"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	entries, err := members.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Handle != "beta" || entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want beta at rank 1", entries[0])
	}
	if entries[2].Handle != "gamma" || entries[2].Rank != 3 {
		t.Errorf("last entry = %+v, want gamma at rank 3", entries[2])
	}
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	runs := NewRunRepository(db, zerolog.Nop())
	ctx := context.Background()

	latest, err := runs.Latest(ctx)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest != nil {
		t.Fatal("expected no runs yet")
	}

	summary := &domain.RunSummary{
		RunDate:         date(2024, time.February, 15),
		Members:         10,
		Seeded:          9,
		SeedFailures:    1,
		StreaksAdvanced: 4,
		StartedAt:       time.Now().Add(-time.Minute),
		FinishedAt:      time.Now(),
	}
	if err := runs.Insert(ctx, summary); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if summary.ID == "" {
		t.Fatal("insert should assign an id")
	}

	latest, err = runs.Latest(ctx)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a run")
	}
	if latest.ID != summary.ID || latest.Members != 10 || latest.Seeded != 9 {
		t.Errorf("latest = %+v, want inserted summary", latest)
	}
	if latest.RunDate.Format(domain.DateLayout) != "2024-02-15" {
		t.Errorf("run date = %s, want 2024-02-15", latest.RunDate.Format(domain.DateLayout))
	}
}
